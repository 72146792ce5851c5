// Package config loads the broker's JSON configuration object, described
// in spec.md §6, from a raw configuration blob. The object lives at the
// literal (dotted, not nested) key "aace.localSkillService".
package config

import (
	"github.com/tidwall/gjson"

	lsserrors "github.com/dbros-oss/lss-broker/pkg/errors"
)

// configKey is the literal top-level key carrying the broker's settings.
// It contains a dot, so gjson path lookups must escape it — a bare
// "aace.localSkillService" would otherwise be read as nested path syntax
// looking for field "localSkillService" inside object "aace".
const configKey = `aace\.localSkillService`

// Config holds the broker's externally supplied settings.
type Config struct {
	// LSSSocketPath is the filesystem path of the Unix-domain socket the
	// broker listens on. Required.
	LSSSocketPath string

	// LMBSocketPath is the sibling Local Media Broker socket path. The
	// broker reads and keeps it for callers that wire the broker into a
	// larger service, but never dereferences it itself (spec.md §6).
	LMBSocketPath string
}

// Load parses raw as JSON and extracts the broker's configuration object.
// A missing object, a missing lssSocketPath, or invalid JSON is a
// configuration error (spec.md §7 kind 1) and is fatal to Broker.Configure.
func Load(raw []byte) (*Config, error) {
	if !gjson.ValidBytes(raw) {
		return nil, lsserrors.Wrap("parse configuration", lsserrors.ErrInvalidInput)
	}

	root := gjson.GetBytes(raw, configKey)
	if !root.Exists() || !root.IsObject() {
		return nil, lsserrors.Wrap(`missing "aace.localSkillService" object`, lsserrors.ErrInvalidInput)
	}

	sockPath := root.Get("lssSocketPath")
	if !sockPath.Exists() || sockPath.String() == "" {
		return nil, lsserrors.Wrap("missing lssSocketPath", lsserrors.ErrInvalidInput)
	}

	return &Config{
		LSSSocketPath: sockPath.String(),
		LMBSocketPath: root.Get("lmbSocketPath").String(),
	}, nil
}
