package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"LDAP_BASEDN=DC=corp,DC=example\n"+
			"LDAP_DCFQDN=dc01.corp.example\n"+
			"LDAP_USERNAME=svc\n"+
			"LDAP_PASSWORD=secret\n"+
			"LDAP_PAGESIZE=250\n"+
			"WINRM_USERNAME=svc\n"+
			"VCENTER_URL=https://vcenter.corp.example/sdk\n"), 0o600))

	cfg, err := LoadEnvConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "DC=corp,DC=example", cfg.LDAP.BaseDN)
	assert.Equal(t, "dc01.corp.example", cfg.LDAP.DcFQDN)
	assert.Equal(t, uint32(250), cfg.LDAP.PageSize)
	assert.Equal(t, 5985, cfg.WinRM.Port)
	assert.Equal(t, "https://vcenter.corp.example/sdk", cfg.VCenter.URL)
}

func TestLoadEnvConfigMissingFile(t *testing.T) {
	_, err := LoadEnvConfig(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}
