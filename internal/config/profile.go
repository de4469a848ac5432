package config

import "fmt"

// EngineSettings are analysis options read from the config file.
// Nil pointers mean "not set" so that file values never mask defaults.
type EngineSettings struct {
	ParallelRules         *bool `yaml:"parallelRules,omitempty"`
	OverlapDetection      *bool `yaml:"overlapDetection,omitempty"`
	OverlapPenalty        *bool `yaml:"overlapPenalty,omitempty"`
	AlignmentSelfMatching *bool `yaml:"alignmentSelfMatching,omitempty"`
	MaxOverlapElements    int   `yaml:"maxOverlapElements,omitempty"`
	BatchSize             int   `yaml:"batchSize,omitempty"`
}

// PageProfile holds per-page presentation settings.
type PageProfile struct {
	// Title overrides the snapshot title in reports.
	Title string `yaml:"title,omitempty"`

	// VisualScore is a visual assessment (0-100) blended into the page score.
	VisualScore *int `yaml:"visualScore,omitempty"`

	// Tags are free-form labels shown in reports.
	Tags []string `yaml:"tags,omitempty"`
}

// File represents the structure of the .pixelpolish configuration file.
type File struct {
	// Engine holds analysis options.
	Engine EngineSettings `yaml:"engine,omitempty"`

	// Defaults is applied to every page unless a page profile overrides it.
	Defaults PageProfile `yaml:"defaults,omitempty"`

	// Pages maps page URLs to their profiles.
	Pages map[string]PageProfile `yaml:"pages,omitempty"`
}

// GetPageProfile returns the profile for a page URL merged over the defaults.
func (cf *File) GetPageProfile(url string) PageProfile {
	result := cf.Defaults
	result.Tags = append([]string(nil), cf.Defaults.Tags...)

	if page, ok := cf.Pages[url]; ok {
		if page.Title != "" {
			result.Title = page.Title
		}
		if page.VisualScore != nil {
			result.VisualScore = page.VisualScore
		}
		if len(page.Tags) > 0 {
			result.Tags = append(result.Tags, page.Tags...)
		}
	}

	return result
}

// Validate checks the visual scores of all profiles.
func (cf *File) Validate() error {
	if err := validateVisualScore("defaults", cf.Defaults.VisualScore); err != nil {
		return err
	}
	for url, page := range cf.Pages {
		if err := validateVisualScore(url, page.VisualScore); err != nil {
			return err
		}
	}
	return nil
}

func validateVisualScore(where string, v *int) error {
	if v != nil && (*v < 0 || *v > 100) {
		return fmt.Errorf("%w: %d in %s", ErrInvalidVisualScore, *v, where)
	}
	return nil
}
