package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	pterrors "github.com/podtend/podtend/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseManifest loads a manifest file from disk, validates it, and
// returns the resulting model.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pterrors.NewParseError(path, 0, err)
	}

	manifest, err := ParseManifestBytes(data)
	if err != nil {
		var perr *pterrors.ParseError
		if ok := asParseError(err, &perr); ok {
			perr.Path = path
		}
		return nil, err
	}
	return manifest, nil
}

// ParseManifestBytes parses and validates an in-memory manifest.
func ParseManifestBytes(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, pterrors.NewParseError("", extractLine(err), err)
	}
	if err := ValidateManifest(&manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func asParseError(err error, target **pterrors.ParseError) bool {
	perr, ok := err.(*pterrors.ParseError)
	if ok {
		*target = perr
	}
	return ok
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}
	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}
	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}
