// Package content defines the versioned site content document, the
// compiled-in default, and the forward-compatible merge applied when
// loading persisted documents.
package content

import "time"

// Meta carries the optimistic-concurrency version counter. Version
// starts at 1 and increases by exactly 1 on every committed write.
type Meta struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type HomeContent struct {
	Tagline     string `json:"tagline"`
	Description string `json:"description"`

	// Background was removed from the document shape. Older persisted
	// documents may still carry it; Merge drops it.
	Background string `json:"background,omitempty"`
}

type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type TimelineEvent struct {
	Year        string `json:"year"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AboutContent struct {
	Philosophy1 string          `json:"philosophy1"`
	Philosophy2 string          `json:"philosophy2"`
	Skills      []Skill         `json:"skills"`
	Timeline    []TimelineEvent `json:"timeline"`
}

type ProjectDetailBlock struct {
	// Type is one of "image", "heading" or "paragraph". Content holds
	// the image URL or the text.
	Type    string `json:"type"`
	Content string `json:"content"`
}

type Project struct {
	ID            int                  `json:"id"`
	Title         string               `json:"title"`
	Category      string               `json:"category"`
	Description   string               `json:"description"`
	ImageURL      string               `json:"imageUrl"`
	Tags          []string             `json:"tags"`
	LiveURL       string               `json:"liveUrl,omitempty"`
	SourceURL     string               `json:"sourceUrl,omitempty"`
	DetailContent []ProjectDetailBlock `json:"detailContent,omitempty"`
}

type WritingBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Writing struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Tagline string         `json:"tagline"`
	Content []WritingBlock `json:"content"`
}

type ContactContent struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// SiteContent is the single versioned document holding all editable
// site content. One logical instance exists per deployment.
type SiteContent struct {
	Meta      Meta           `json:"meta"`
	Home      HomeContent    `json:"home"`
	About     AboutContent   `json:"about"`
	Portfolio []Project      `json:"portfolio"`
	Writings  []Writing      `json:"writings"`
	Contact   ContactContent `json:"contact"`
}

// Default returns the compiled-in document served before any write has
// happened and used as the merge base when loading persisted documents.
func Default() SiteContent {
	return SiteContent{
		Meta: Meta{
			Version:   1,
			UpdatedAt: time.Now().UTC(),
		},
		Home: HomeContent{
			Tagline:     "Multidisciplinary Creative & Technologist",
			Description: "Blending business, technology, and art. Specializing in 3D design, videography, graphic design, and philosophical storytelling.",
		},
		About: AboutContent{
			Philosophy1: "My work merges precision, creativity, and critical thinking, shaped by a deep exploration of consciousness, communication, and human understanding.",
			Philosophy2: "I independently specialize in 3D design, videography, graphic design, coding, and philosophical storytelling.",
			Skills: []Skill{
				{Name: "3D Artistry (Blender, C4D)", Level: 95},
				{Name: "Graphic Design & Branding", Level: 90},
				{Name: "Videography & Editing", Level: 92},
				{Name: "Python (Automation, AI, Backend)", Level: 85},
				{Name: "JavaScript (React, Node.js)", Level: 80},
			},
			Timeline: []TimelineEvent{
				{Year: "2019", Title: "Start of Formal Education", Description: "Began a Certificate in Business Administration."},
				{Year: "2022", Title: "Expanding Creative Horizons", Description: "Graduated and ventured deeper into freelance creative work."},
				{Year: "2024", Title: "Creative Technologist", Description: "Continuing independent creative projects in 3D, coding, and storytelling."},
			},
		},
		Portfolio: []Project{
			{
				ID:          1,
				Title:       "Philosophical Video Series",
				Category:    "Videography",
				Description: "A philosophical video series exploring consciousness and human perception, from scriptwriting to final edit.",
				ImageURL:    "https://i.imgur.com/Kx8pQyT.jpeg",
				Tags:        []string{"DaVinci Resolve", "After Effects", "Scriptwriting"},
				LiveURL:     "#",
				DetailContent: []ProjectDetailBlock{
					{Type: "paragraph", Content: "Each episode tackles a different philosophical concept, presented through a visually engaging narrative."},
					{Type: "heading", Content: "Production Process"},
					{Type: "paragraph", Content: "Extensive research, scriptwriting, storyboarding, and post-production."},
				},
			},
			{
				ID:          2,
				Title:       "AI-Powered Creative Tools",
				Category:    "Apps",
				Description: "Python-based automation tools and AI-powered creative systems to enhance artistic workflows.",
				ImageURL:    "https://i.imgur.com/OZuFn0G.jpeg",
				Tags:        []string{"Python", "AI Agents", "React", "Node.js"},
				SourceURL:   "#",
			},
		},
		Writings: []Writing{
			{
				ID:      "the-nature-of-the-self",
				Title:   "The Nature of the Self",
				Tagline: "An inquiry into consciousness and identity.",
				Content: []WritingBlock{
					{Type: "heading", Text: "The Nature of the Self"},
					{Type: "paragraph", Text: "What we call the self is less a fixed object than a process, continuously reconstructed from memory and perception."},
				},
			},
		},
		Contact: ContactContent{
			Email:    "hello@example.com",
			Phone:    "+255 000 000 000",
			Location: "Dar es Salaam, Tanzania",
		},
	}
}

// Merge overlays a loaded document onto the default so that sections
// introduced after the document was persisted fall back to their
// defaults instead of being left empty. The legacy home.background
// field is dropped here as a one-time migration.
func Merge(base, loaded SiteContent) SiteContent {
	merged := base

	if loaded.Meta.Version > 0 {
		merged.Meta = loaded.Meta
	}
	if loaded.Home.Tagline != "" || loaded.Home.Description != "" {
		merged.Home = loaded.Home
	}
	merged.Home.Background = ""
	if !aboutIsZero(loaded.About) {
		merged.About = loaded.About
	}
	if loaded.Portfolio != nil {
		merged.Portfolio = loaded.Portfolio
	}
	if loaded.Writings != nil {
		merged.Writings = loaded.Writings
	}
	if loaded.Contact != (ContactContent{}) {
		merged.Contact = loaded.Contact
	}
	return merged
}

func aboutIsZero(a AboutContent) bool {
	return a.Philosophy1 == "" && a.Philosophy2 == "" && len(a.Skills) == 0 && len(a.Timeline) == 0
}
