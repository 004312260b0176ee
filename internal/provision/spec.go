package provision

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"
)

// ToolSpec describes a version-pinned helper binary and where its prebuilt
// release artifacts live. The URL template is parameterized by {version},
// {os}, and {arch}; the platform tokens are substituted with normalized
// values only, never raw machine strings.
type ToolSpec struct {
	Name        string `mapstructure:"name" yaml:"name" validate:"required"`
	Version     string `mapstructure:"version" yaml:"version" validate:"required"`
	URLTemplate string `mapstructure:"url_template" yaml:"url_template" validate:"required"`
}

var validate = validator.New()

// Validate checks required fields, the semver version pin, and the presence
// of the platform tokens in the URL template.
func (s ToolSpec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("tool spec validation failed: %w", err)
	}

	if !semver.IsValid(s.Version) {
		return fmt.Errorf("tool '%s' version '%s' is not valid semver (expected e.g. v0.4.7)", s.Name, s.Version)
	}

	for _, token := range []string{"{os}", "{arch}"} {
		if !strings.Contains(s.URLTemplate, token) {
			return fmt.Errorf("tool '%s' url_template is missing the %s token", s.Name, token)
		}
	}

	return nil
}

// ResolveURL renders the download URL for the given platform. The platform
// is normalized first, so the rendered URL can only ever contain the
// normalized os and arch tokens.
func (s ToolSpec) ResolveURL(platform Platform) (string, error) {
	normalized, err := platform.Normalize()
	if err != nil {
		return "", err
	}

	replacer := strings.NewReplacer(
		"{version}", s.Version,
		"{os}", normalized.OS,
		"{arch}", normalized.Arch,
	)
	return replacer.Replace(s.URLTemplate), nil
}
