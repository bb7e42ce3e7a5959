package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/viper"
)

// DefaultOutputPath is the snapshot file written in the working directory
const DefaultOutputPath = "issues.json"

// Configuration keys
const (
	KeyOwner  = "owner"
	KeyRepo   = "repo"
	KeyToken  = "token"
	KeyLabel  = "label"
	KeyLimit  = "limit"
	KeyOutput = "output"
)

// ErrMissingConfig is returned when a required setting is absent or empty
var ErrMissingConfig = errors.New("missing required environment variables: OWNER, REPO, GITHUB_PAT, LABEL")

// envBindings lists the environment variables for each key in lookup order.
// INPUT_* variables are how GitHub Actions passes step inputs.
var envBindings = map[string][]string{
	KeyOwner:  {"OWNER", "INPUT_OWNER"},
	KeyRepo:   {"REPO", "INPUT_REPO"},
	KeyToken:  {"GITHUB_PAT", "INPUT_GITHUB_PAT"},
	KeyLabel:  {"LABEL", "INPUT_LABEL"},
	KeyLimit:  {"LIMIT", "INPUT_LIMIT"},
	KeyOutput: {"OUTPUT", "INPUT_OUTPUT"},
}

// BindEnv binds every configuration key to its environment variables
func BindEnv(v *viper.Viper) error {
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	v.SetDefault(KeyOutput, DefaultOutputPath)

	return nil
}

// LoadConfig reads the configuration from v.
// The returned Config is populated even when validation fails so it can be logged.
func LoadConfig(v *viper.Viper) (Config, error) {
	limit, limited := ParseLimit(v.GetString(KeyLimit))

	config := Config{
		Owner:      v.GetString(KeyOwner),
		Repo:       v.GetString(KeyRepo),
		Token:      v.GetString(KeyToken),
		Label:      v.GetString(KeyLabel),
		Limit:      limit,
		Limited:    limited,
		OutputPath: v.GetString(KeyOutput),
	}

	if config.OutputPath == "" {
		config.OutputPath = DefaultOutputPath
	}

	return config, config.Validate()
}

// Validate checks that all required settings are present
func (c Config) Validate() error {
	var missing []string

	if c.Owner == "" {
		missing = append(missing, "OWNER")
	}
	if c.Repo == "" {
		missing = append(missing, "REPO")
	}
	if c.Token == "" {
		missing = append(missing, "GITHUB_PAT")
	}
	if c.Label == "" {
		missing = append(missing, "LABEL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w (not set: %s)", ErrMissingConfig, strings.Join(missing, ", "))
	}

	return nil
}

// ParseLimit reads the leading integer of raw. Leading whitespace and a sign
// are accepted, parsing stops at the first non-digit ("12abc" and "12.9" are 12)
// and a 0x prefix switches to hexadecimal.
// ok is false when raw does not start with a number, which means no limit.
func ParseLimit(raw string) (limit int, ok bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}

	if end == 0 {
		return 0, false
	}

	value, err := strconv.ParseInt(s[:end], base, 0)
	if err != nil {
		// only a range error is possible here
		value = math.MaxInt
	}

	if negative {
		value = -value
	}

	return int(value), true
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16:
		return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	default:
		return false
	}
}

// MaskToken keeps the first four characters of a secret and hides the rest
func MaskToken(token string) string {
	if len(token) <= 4 {
		return token + "..."
	}

	return token[:4] + "..."
}

// String renders the configuration for logging with the token masked
func (c Config) String() string {
	limit := "no limit"
	if c.HasLimit() {
		limit = strconv.Itoa(c.Limit)
	}

	return fmt.Sprintf("OWNER=%s REPO=%s GITHUB_PAT=%s LABEL=%s LIMIT=%s",
		c.Owner, c.Repo, MaskToken(c.Token), c.Label, limit)
}
