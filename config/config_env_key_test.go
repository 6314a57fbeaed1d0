package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeEnvKey(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master":  map[string]any{"userName": "coderr"},
		},
		"storage":    map[string]any{"mediaBaseUrl": ""},
		"pagination": map[string]any{"defaultPageSize": 6},
		"database":   map[string]any{"slowQueryThreshold": "500ms"},
		"secretKey":  map[string]any{"access": ""},
	}

	cases := map[string]string{
		"POSTGRES_SSLMODE":            "postgres.sslMode",
		"POSTGRES_MASTER_USERNAME":    "postgres.master.userName",
		"STORAGE_MEDIABASEURL":        "storage.mediaBaseUrl",
		"PAGINATION_DEFAULTPAGESIZE":  "pagination.defaultPageSize",
		"DATABASE_SLOWQUERYTHRESHOLD": "database.slowQueryThreshold",
		"SECRETKEY_ACCESS":            "secretKey.access",
		"UNKNOWN_SECTION_KEY":         "unknown.section.key",
		"__HTTP__PORT":                "http.port",
	}

	for envKey, want := range cases {
		assert.Equal(t, want, canonicalizeEnvKey(envKey, existing), envKey)
	}
}
