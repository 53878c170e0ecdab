package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdminAccounts(t *testing.T) {
	t.Parallel()

	accounts := ParseAdminAccounts("Admin@x.com:hunter22:boss, second@x.com:pw:ops")
	require.Len(t, accounts, 2)

	assert.Equal(t, "admin@x.com", accounts[0].Email)
	assert.Equal(t, "hunter22", accounts[0].Password)
	assert.Equal(t, "boss", accounts[0].Username)

	assert.Equal(t, "second@x.com", accounts[1].Email)
}

func TestParseAdminAccounts_SkipsMalformed(t *testing.T) {
	t.Parallel()

	accounts := ParseAdminAccounts("no-colons,only:two,good@x.com:pw:name,::empty")
	require.Len(t, accounts, 1)
	assert.Equal(t, "good@x.com", accounts[0].Email)
}

func TestParseAdminAccounts_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ParseAdminAccounts(""))
	assert.Empty(t, ParseAdminAccounts("  ,  "))
}

func TestFindAdminAccount(t *testing.T) {
	t.Parallel()

	cfg := &Config{AdminAccounts: ParseAdminAccounts("admin@x.com:pw:boss")}

	acct, ok := cfg.FindAdminAccount("ADMIN@x.com ")
	require.True(t, ok)
	assert.Equal(t, "boss", acct.Username)

	_, ok = cfg.FindAdminAccount("nobody@x.com")
	assert.False(t, ok)
}

func TestIsProduction(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Config{Environment: "production"}).IsProduction())
	assert.True(t, (&Config{Environment: " Production "}).IsProduction())
	assert.False(t, (&Config{Environment: "development"}).IsProduction())
}

func TestHostOnly(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "api.example.com", hostOnly("https://api.example.com/api"))
	assert.Equal(t, "localhost", hostOnly("http://localhost:8080"))
	assert.Equal(t, "example.com", hostOnly("example.com"))
}
