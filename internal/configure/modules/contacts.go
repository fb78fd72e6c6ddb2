package modules

import (
	"encoding/json"
	"strings"

	"droidseed/internal/adb"
	"droidseed/internal/configure"
)

const contactsProviderPackage = "com.android.providers.contacts"

// Contacts clears and seeds the contacts provider. Individual inserts go
// through the contact-editor intent; a failed insert is logged and skipped.
type Contacts struct {
	base
}

type contactsConfig struct {
	ClearContacts  bool           `json:"clear_contacts"`
	AddContacts    []contactEntry `json:"add_contacts"`
	VerifyContacts bool           `json:"verify_contacts"`
}

type contactEntry struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

func NewContacts(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &Contacts{newBase("contacts", env, raw)}
}

func (m *Contacts) Name() string { return "contacts" }

func (m *Contacts) Configure() error {
	var cfg contactsConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()

	if cfg.ClearContacts {
		if err := dev.ClearAppData(contactsProviderPackage); err != nil {
			return err
		}
		m.log.Info().Msg("cleared all contacts")
	}

	added := 0
	for _, c := range cfg.AddContacts {
		if c.Name == "" || c.Number == "" {
			m.log.Warn().Msg("skipping contact with missing name or number")
			continue
		}
		if err := m.addContact(c); err != nil {
			m.log.Error().Err(err).Str("name", c.Name).Msg("add contact failed")
			continue
		}
		added++
		m.log.Info().Str("name", c.Name).Str("number", c.Number).Msg("contact added")
	}
	if added > 0 {
		if err := dev.PressHome(); err != nil {
			m.log.Warn().Err(err).Msg("home press failed")
		}
	}

	if cfg.VerifyContacts {
		m.verify()
	}
	return nil
}

// addContact drives the contact-editor insert intent and confirms the save.
func (m *Contacts) addContact(c contactEntry) error {
	dev := m.dev()
	err := dev.StartActivity(
		"-a", "android.intent.action.INSERT",
		"-t", "vnd.android.cursor.dir/contact",
		"-e", "name", adb.Quote(c.Name),
		"-e", "phone", adb.Quote(c.Number),
	)
	if err != nil {
		return err
	}
	if err := dev.SettleAfterLaunch(configure.Apps["contacts"].Package); err != nil {
		m.log.Warn().Err(err).Msg("contact editor slow to appear")
	}
	return dev.KeyEvent("KEYCODE_ENTER")
}

func (m *Contacts) verify() {
	out, err := m.dev().Shell("content query --uri content://contacts/phones --projection display_name:number")
	if err != nil {
		m.log.Warn().Err(err).Msg("contact verification query failed")
		return
	}
	rows := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "Row:") {
			rows++
		}
	}
	m.log.Info().Int("contacts", rows).Msg("verified contacts")
}
