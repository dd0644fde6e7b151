package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateComposition(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ProjectsDir) == "" {
		return errors.New("paths.projects_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.SimilarityThreshold <= 0 || c.Extraction.SimilarityThreshold > 1 {
		return errors.New("extraction.similarity_threshold must be in (0, 1]")
	}
	if c.Extraction.CropThreshold < 0 || c.Extraction.CropThreshold > 255 {
		return errors.New("extraction.crop_threshold must be between 0 and 255")
	}
	if c.Extraction.SampleInterval < 0 {
		return errors.New("extraction.sample_interval must be >= 0")
	}
	return nil
}

func (c *Config) validateComposition() error {
	switch c.Composition.Orientation {
	case "portrait", "landscape":
	default:
		return fmt.Errorf("composition.orientation must be \"portrait\" or \"landscape\", got %q", c.Composition.Orientation)
	}
	if c.Composition.FrameScale <= 0 || c.Composition.FrameScale > 1 {
		return errors.New("composition.frame_scale must be in (0, 1]")
	}
	if c.Composition.FrameSpacing < 0 {
		return errors.New("composition.frame_spacing must be >= 0")
	}
	if err := ensurePositiveMap(map[string]int{
		"composition.timeout_seconds": c.Composition.TimeoutSeconds,
		"composition.render_dpi":      c.Composition.RenderDPI,
		"composition.preview_dpi":     c.Composition.PreviewDPI,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
