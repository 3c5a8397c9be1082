package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A client with no sockets: argument validation runs before any network
// traffic, so these paths are exercisable offline.
func offlineClient() *Client {
	return &Client{hostname: DefaultHostname, port: DefaultPort}
}

func TestUnknownCommand(t *testing.T) {
	c := offlineClient()
	assert.ErrorIs(t, c.Execute("frobnicate"), ErrUnknownCommand)
}

func TestEmptyLineIsIgnored(t *testing.T) {
	c := offlineClient()
	assert.NoError(t, c.Execute(""))
	assert.NoError(t, c.Execute("   "))
}

func TestArgumentValidation(t *testing.T) {
	c := offlineClient()
	for name, line := range map[string]string{
		"login arity":         "login 123456",
		"login short uid":     "login 12345 abcdefgh",
		"login alpha uid":     "login 12345a abcdefgh",
		"login long password": "login 123456 abcdefghi",
		"logout arity":        "logout now",
		"unregister arity":    "unregister 123456",
		"open arity":          "open car a.txt 100",
		"open long name":      "open elevenchars1 a.txt 100 60",
		"open bad value":      "open car a.txt abc 60",
		"open long duration":  "open car a.txt 100 123456",
		"close bad aid":       "close 01",
		"bid arity":           "bid 001",
		"bid bad value":       "bid 001 12x",
		"show_asset bad aid":  "sa 1",
		"show_record bad aid": "sr abcd",
	} {
		err := c.Execute(line)
		var argErr *ArgumentError
		assert.True(t, errors.As(err, &argErr), "%s: got %v", name, err)
	}
}

func TestAliasesResolve(t *testing.T) {
	for _, alias := range []string{"ma", "mb", "l", "sa", "b", "sr"} {
		assert.NotNil(t, lookup(alias), alias)
	}
	assert.Nil(t, lookup("zz"))
}

func TestLoggedOutShortCircuits(t *testing.T) {
	// Commands that require a session print a notice and never touch the
	// network while logged out.
	c := offlineClient()
	for _, line := range []string{"logout", "unregister", "myauctions", "mybids", "bid 001 100"} {
		assert.NoError(t, c.Execute(line), line)
	}
}

func TestExitRefusedWhileLoggedIn(t *testing.T) {
	c := offlineClient()
	c.user.LogIn("123456", "abcdefgh")
	assert.NoError(t, c.Execute("exit"))
	assert.False(t, c.toExit)

	c.user.LogOut()
	assert.NoError(t, c.Execute("exit"))
	assert.True(t, c.toExit)
}

func TestPromptReflectsSession(t *testing.T) {
	c := offlineClient()
	assert.Equal(t, "> ", c.Prompt())
	c.user.LogIn("123456", "abcdefgh")
	assert.Equal(t, "[123456] > ", c.Prompt())
}
