package activedirectory

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog"
)

// userAccountControl flag for a disabled account (ACCOUNTDISABLE).
const uacAccountDisable = 0x2

// ErrNotFound is returned when a lookup resolves no directory object.
var ErrNotFound = errors.New("object not found in directory")

var computerAttributes = []string{
	"sAMAccountName",
	"whenCreated",
	"whenChanged",
	"pwdLastSet",
	"lastLogonTimestamp",
	"ms-Mcs-AdmPwdExpirationTime",
	"operatingSystem",
	"userAccountControl",
}

type ActiveDirectoryInstance struct {
	BaseDn               string
	DomainControllerFQDN string
	PageSize             uint32
	ldapConnection       *ldap.Conn
	logger               zerolog.Logger
}

func NewActiveDirectoryInstance(baseDn string, domainControllerFQDN string, pageSize uint32, logger zerolog.Logger) *ActiveDirectoryInstance {
	return &ActiveDirectoryInstance{
		BaseDn:               baseDn,
		DomainControllerFQDN: domainControllerFQDN,
		PageSize:             pageSize,
		logger:               logger,
	}
}

// Connect to the Active Directory Domain Controller
func (ad *ActiveDirectoryInstance) Connect(username, password string) error {
	bindString := fmt.Sprintf("ldap://%s:389", ad.DomainControllerFQDN)
	conn, err := ldap.DialURL(bindString)
	if err != nil {
		return fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	// TODO: LDAPS, IWA/GSSAPI, etc
	if err := conn.Bind(username, password); err != nil {
		conn.Close()
		return fmt.Errorf("failed to bind to LDAP server: %w", err)
	}

	res, err := conn.WhoAmI(nil)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to call WhoAmI(): %w", err)
	}

	ad.ldapConnection = conn
	ad.logger.Info().Str("server", bindString).Str("authz_id", res.AuthzID).Msg("authenticated to domain controller")
	return nil
}

func (ad *ActiveDirectoryInstance) Close() {
	if ad.ldapConnection != nil {
		ad.ldapConnection.Close()
	}
}

func (ad *ActiveDirectoryInstance) searchSubtree(filter string, attributes []string) ([]*ldap.Entry, error) {
	request := ldap.NewSearchRequest(
		ad.BaseDn,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		filter,
		attributes,
		nil,
	)

	results, err := ad.ldapConnection.SearchWithPaging(request, ad.PageSize)
	if err != nil {
		return nil, fmt.Errorf("LDAP search failed: %w", err)
	}
	return results.Entries, nil
}

func (ad *ActiveDirectoryInstance) fetchEntry(dn string, attributes []string) (*ldap.Entry, error) {
	request := ldap.NewSearchRequest(
		dn,
		ldap.ScopeBaseObject,
		ldap.NeverDerefAliases,
		0, 0, false,
		"(objectClass=*)",
		attributes,
		nil,
	)

	results, err := ad.ldapConnection.Search(request)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return nil, fmt.Errorf("%s: %w", dn, ErrNotFound)
		}
		return nil, fmt.Errorf("LDAP search failed: %w", err)
	}
	if len(results.Entries) == 0 {
		return nil, fmt.Errorf("%s: %w", dn, ErrNotFound)
	}
	return results.Entries[0], nil
}

// EnabledWorkstations fetches all enabled workstation-class computer objects
// with the attribute set needed for staleness evaluation. Server OS builds
// are excluded up front so the cleanup never considers them.
func (ad *ActiveDirectoryInstance) EnabledWorkstations() ([]Computer, error) {
	filter := And(
		Eq("objectCategory", "computer"),
		Contains("operatingSystem", "Windows"),
		Not(Contains("operatingSystem", "Server")),
		Not(BitSet("userAccountControl", uacAccountDisable)),
	).String()

	entries, err := ad.searchSubtree(filter, computerAttributes)
	if err != nil {
		return nil, err
	}

	computers := make([]Computer, 0, len(entries))
	for _, entry := range entries {
		computer, err := computerFromEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("parsing computer %s: %w", entry.DN, err)
		}
		computers = append(computers, computer)
	}
	return computers, nil
}

// AllComputerNames returns the account names of every computer object in the
// domain, enabled or not.
func (ad *ActiveDirectoryInstance) AllComputerNames() ([]string, error) {
	entries, err := ad.searchSubtree(Eq("objectCategory", "computer").String(), []string{"sAMAccountName"})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.GetAttributeValue("sAMAccountName"))
	}
	return names, nil
}

// RecoveryKeys performs one bulk query for every BitLocker recovery object in
// the domain. The caller joins them to computers by DN ancestry.
func (ad *ActiveDirectoryInstance) RecoveryKeys() ([]RecoveryKey, error) {
	entries, err := ad.searchSubtree(
		Eq("objectClass", "msFVE-RecoveryInformation").String(),
		[]string{"whenCreated", "msFVE-RecoveryPassword"},
	)
	if err != nil {
		return nil, err
	}

	keys := make([]RecoveryKey, 0, len(entries))
	for _, entry := range entries {
		key := RecoveryKey{
			DN:       entry.DN,
			Password: entry.GetAttributeValue("msFVE-RecoveryPassword"),
		}
		if raw := entry.GetAttributeValue("whenCreated"); raw != "" {
			created, err := fromGeneralizedTime(raw)
			if err != nil {
				return nil, fmt.Errorf("parsing recovery object %s: %w", entry.DN, err)
			}
			key.Created = created
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// LookupComputer resolves a computer by account name and returns its current
// state. Used to re-resolve records whose DN may have changed since they were
// archived.
func (ad *ActiveDirectoryInstance) LookupComputer(accountName string) (Computer, error) {
	filter := And(
		Eq("objectCategory", "computer"),
		Eq("sAMAccountName", accountName),
	).String()

	entries, err := ad.searchSubtree(filter, computerAttributes)
	if err != nil {
		return Computer{}, err
	}
	if len(entries) == 0 {
		return Computer{}, fmt.Errorf("computer %s: %w", accountName, ErrNotFound)
	}
	return computerFromEntry(entries[0])
}

// DisableAccount sets the ACCOUNTDISABLE flag on the object. It reports false
// without modification when the account is already disabled, so re-running a
// batch is a no-op for records it already processed.
func (ad *ActiveDirectoryInstance) DisableAccount(dn string) (bool, error) {
	entry, err := ad.fetchEntry(dn, []string{"userAccountControl"})
	if err != nil {
		return false, err
	}

	uac, err := strconv.ParseInt(entry.GetAttributeValue("userAccountControl"), 10, 64)
	if err != nil {
		return false, fmt.Errorf("parsing userAccountControl for %s: %w", dn, err)
	}
	if uac&uacAccountDisable != 0 {
		return false, nil
	}

	modify := ldap.NewModifyRequest(dn, nil)
	modify.Replace("userAccountControl", []string{strconv.FormatInt(uac|uacAccountDisable, 10)})
	if err := ad.ldapConnection.Modify(modify); err != nil {
		return false, fmt.Errorf("disabling %s: %w", dn, err)
	}
	return true, nil
}

// MoveObject relocates the object under newParentDN, keeping its RDN, and
// returns the new DN.
func (ad *ActiveDirectoryInstance) MoveObject(dn, newParentDN string) (string, error) {
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return "", fmt.Errorf("parsing DN %s: %w", dn, err)
	}
	if len(parsed.RDNs) == 0 || len(parsed.RDNs[0].Attributes) == 0 {
		return "", fmt.Errorf("DN %s has no RDN", dn)
	}

	first := parsed.RDNs[0].Attributes[0]
	rdn := fmt.Sprintf("%s=%s", first.Type, ldap.EscapeDN(first.Value))

	request := ldap.NewModifyDNRequest(dn, rdn, true, newParentDN)
	if err := ad.ldapConnection.ModifyDN(request); err != nil {
		return "", fmt.Errorf("moving %s to %s: %w", dn, newParentDN, err)
	}
	return rdn + "," + newParentDN, nil
}

// CreateOrganizationalUnit creates a child OU under parentDN and returns its
// DN.
func (ad *ActiveDirectoryInstance) CreateOrganizationalUnit(parentDN, name string) (string, error) {
	dn := fmt.Sprintf("OU=%s,%s", ldap.EscapeDN(name), parentDN)

	request := ldap.NewAddRequest(dn, nil)
	request.Attribute("objectClass", []string{"top", "organizationalUnit"})
	request.Attribute("ou", []string{name})
	if err := ad.ldapConnection.Add(request); err != nil {
		return "", fmt.Errorf("creating OU %s: %w", dn, err)
	}
	return dn, nil
}

// ReplaceAttribute overwrites a single attribute on the object.
func (ad *ActiveDirectoryInstance) ReplaceAttribute(dn, attribute string, values ...string) error {
	modify := ldap.NewModifyRequest(dn, nil)
	modify.Replace(attribute, values)
	if err := ad.ldapConnection.Modify(modify); err != nil {
		return fmt.Errorf("replacing %s on %s: %w", attribute, dn, err)
	}
	return nil
}
