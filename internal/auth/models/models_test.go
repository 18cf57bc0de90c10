package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "walletgate/pkg/domain-errors"
)

func validConfig() Config {
	return Config{
		ClientID:     "client-123",
		AuthorityURL: "https://login.example.com/common",
		RedirectURI:  "https://app.example.com/auth/callback",
		Scopes:       []string{"openid", "profile", "email"},
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cases := map[string]func(*Config){
		"missing client id":    func(c *Config) { c.ClientID = "" },
		"missing authority":    func(c *Config) { c.AuthorityURL = "" },
		"missing redirect uri": func(c *Config) { c.RedirectURI = "" },
		"no scopes":            func(c *Config) { c.Scopes = nil },
		"blank scope":          func(c *Config) { c.Scopes = []string{"openid", " "} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
		})
	}
}

func TestConfig_ScopeParam(t *testing.T) {
	assert.Equal(t, "openid profile email", validConfig().ScopeParam())
}
