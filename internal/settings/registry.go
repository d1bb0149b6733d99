// Package settings registers the report's admin settings and resolves
// their stored values.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"github.com/kursadbilgin/failedemails-report/internal/lang"
)

const (
	Plugin = "report_failedemails"

	ItemsPerPage        = "itemsperpage"
	DefaultItemsPerPage = 10
)

// Definition describes one admin setting.
type Definition struct {
	Plugin         string
	Name           string
	LabelKey       string
	DescriptionKey string
	Default        int
}

// FullName is the plugin/name form used on the admin settings page.
func (d Definition) FullName() string {
	return d.Plugin + "/" + d.Name
}

func (d Definition) DefaultString() string {
	return strconv.Itoa(d.Default)
}

// Parse validates a submitted value. Settings are positive integers.
func (d Definition) Parse(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, d.FullName())
	}
	if value < 1 {
		return 0, fmt.Errorf("%w: %s must be greater than zero", domain.ErrValidation, d.FullName())
	}
	return value, nil
}

// Resolve turns a stored value into an effective one. Empty, non-numeric
// and non-positive values yield the default.
func (d Definition) Resolve(stored string) int {
	value, err := d.Parse(stored)
	if err != nil {
		return d.Default
	}
	return value
}

var definitions = []Definition{
	{
		Plugin:         Plugin,
		Name:           ItemsPerPage,
		LabelKey:       lang.FailedMailsPerPage,
		DescriptionKey: lang.FailedMailsPerPageDes,
		Default:        DefaultItemsPerPage,
	},
}

// Definitions returns the registered settings in display order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup finds a registered setting by name.
func Lookup(name string) (Definition, error) {
	name = strings.TrimSpace(name)
	for _, def := range definitions {
		if def.Name == name {
			return def, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: unknown setting %q", domain.ErrNotFound, name)
}
