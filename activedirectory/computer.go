package activedirectory

import (
	"fmt"
	"strconv"

	"github.com/go-ldap/ldap/v3"
)

// computerFromEntry builds a Computer from a returned LDAP entry. whenCreated
// and whenChanged arrive as generalized-time strings; pwdLastSet,
// lastLogonTimestamp and the LAPS expiration arrive as FILETIME integers.
func computerFromEntry(entry *ldap.Entry) (Computer, error) {
	computer := Computer{
		Name:            entry.GetAttributeValue("sAMAccountName"),
		DN:              entry.DN,
		OperatingSystem: entry.GetAttributeValue("operatingSystem"),
	}

	if raw := entry.GetAttributeValue("whenCreated"); raw != "" {
		created, err := fromGeneralizedTime(raw)
		if err != nil {
			return Computer{}, fmt.Errorf("whenCreated: %w", err)
		}
		computer.Created = created
	}

	if raw := entry.GetAttributeValue("whenChanged"); raw != "" {
		changed, err := fromGeneralizedTime(raw)
		if err != nil {
			return Computer{}, fmt.Errorf("whenChanged: %w", err)
		}
		computer.Changed = changed
	}

	pwdLastSet, err := fromFiletime(entry.GetAttributeValue("pwdLastSet"))
	if err != nil {
		return Computer{}, fmt.Errorf("pwdLastSet: %w", err)
	}
	if pwdLastSet != nil {
		computer.PasswordLastSet = *pwdLastSet
	}

	lastLogon, err := fromFiletime(entry.GetAttributeValue("lastLogonTimestamp"))
	if err != nil {
		return Computer{}, fmt.Errorf("lastLogonTimestamp: %w", err)
	}
	if lastLogon != nil {
		computer.LastLogon = *lastLogon
	}

	// Absent on machines without a managed LAPS credential.
	expiration, err := fromFiletime(entry.GetAttributeValue("ms-Mcs-AdmPwdExpirationTime"))
	if err != nil {
		return Computer{}, fmt.Errorf("ms-Mcs-AdmPwdExpirationTime: %w", err)
	}
	computer.PasswordExpiration = expiration

	if raw := entry.GetAttributeValue("userAccountControl"); raw != "" {
		uac, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Computer{}, fmt.Errorf("userAccountControl: %w", err)
		}
		computer.Enabled = uac&uacAccountDisable == 0
	}

	return computer, nil
}
