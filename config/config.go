package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Configuration struct {
	LDAP    LDAPConfiguration
	WinRM   WinRMConfiguration
	VCenter VCenterConfiguration
}

type LDAPConfiguration struct {
	BaseDN   string
	DcFQDN   string
	Username string
	Password string
	PageSize uint32
}

type WinRMConfiguration struct {
	Username string
	Password string
	Port     int
	UseHTTPS bool
}

type VCenterConfiguration struct {
	URL      string
	Username string
	Password string
	Insecure bool
}

// LoadEnvConfig reads settings from the given env file plus the process
// environment. Only the LDAP block is mandatory; WinRM and vCenter settings
// are validated by the commands that need them.
func LoadEnvConfig(configName string) (Configuration, error) {
	if err := godotenv.Load(configName); err != nil {
		return Configuration{}, fmt.Errorf("loading %s: %w", configName, err)
	}

	pageSize := uint32(500)
	if raw := os.Getenv("LDAP_PAGESIZE"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Configuration{}, fmt.Errorf("parsing LDAP_PAGESIZE: %w", err)
		}
		pageSize = uint32(parsed)
	}

	winrmPort := 5985
	if raw := os.Getenv("WINRM_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Configuration{}, fmt.Errorf("parsing WINRM_PORT: %w", err)
		}
		winrmPort = parsed
	}

	cfg := Configuration{
		LDAP: LDAPConfiguration{
			BaseDN:   os.Getenv("LDAP_BASEDN"),
			DcFQDN:   os.Getenv("LDAP_DCFQDN"),
			Username: os.Getenv("LDAP_USERNAME"),
			Password: os.Getenv("LDAP_PASSWORD"),
			PageSize: pageSize,
		},
		WinRM: WinRMConfiguration{
			Username: os.Getenv("WINRM_USERNAME"),
			Password: os.Getenv("WINRM_PASSWORD"),
			Port:     winrmPort,
			UseHTTPS: os.Getenv("WINRM_HTTPS") == "true",
		},
		VCenter: VCenterConfiguration{
			URL:      os.Getenv("VCENTER_URL"),
			Username: os.Getenv("VCENTER_USERNAME"),
			Password: os.Getenv("VCENTER_PASSWORD"),
			Insecure: os.Getenv("VCENTER_INSECURE") == "true",
		},
	}

	if cfg.LDAP.BaseDN == "" || cfg.LDAP.DcFQDN == "" {
		return Configuration{}, fmt.Errorf("LDAP_BASEDN and LDAP_DCFQDN must be set in %s", configName)
	}

	return cfg, nil
}
