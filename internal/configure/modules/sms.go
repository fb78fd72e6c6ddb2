package modules

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"droidseed/internal/configure"
)

// SMS seeds the telephony store. Received messages go through the emulator
// console; sent messages are written straight into mmssms.db since there is
// no injection path for outbound traffic.
type SMS struct {
	base
	now func() time.Time
}

type smsConfig struct {
	ClearMessages           bool       `json:"clear_messages"`
	AddMessages             []smsEntry `json:"add_messages"`
	AddRandomConversations  bool       `json:"add_random_conversations"`
	RandomConversationCount *int       `json:"random_conversation_count"`
}

type smsEntry struct {
	Number     string `json:"number"`
	Text       string `json:"text"`
	IsReceived *bool  `json:"is_received"`
}

var phoneJunk = regexp.MustCompile(`[^0-9+]`)

func NewSMS(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &SMS{base: newBase("sms", env, raw), now: time.Now}
}

func (m *SMS) Name() string { return "sms" }

func (m *SMS) Configure() error {
	var cfg smsConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}

	if cfg.ClearMessages {
		if err := m.clearAll(); err != nil {
			return err
		}
	}

	added := 0
	for _, msg := range cfg.AddMessages {
		if msg.Number == "" || msg.Text == "" {
			m.log.Warn().Msg("skipping message with missing number or text")
			continue
		}
		if err := m.addMessage(msg.Number, msg.Text, boolDefault(msg.IsReceived, true)); err != nil {
			m.log.Error().Err(err).Str("number", msg.Number).Msg("add message failed")
			continue
		}
		added++
	}
	if added > 0 {
		m.log.Info().Int("messages", added).Msg("messages added")
	}

	if cfg.AddRandomConversations {
		m.addRandomConversations(intDefault(cfg.RandomConversationCount, 3))
	}
	return nil
}

// clearAll wipes the telephony tables, then chases the content-provider
// views. Provider deletes are best-effort: some URIs reject deletion on
// recent API levels.
func (m *SMS) clearAll() error {
	dev := m.dev()
	for _, table := range []string{"sms", "threads", "mms", "canonical_addresses"} {
		if err := configure.ClearTable(dev, configure.TelephonyDBPath, table); err != nil {
			return err
		}
	}
	for _, uri := range []string{
		"content://sms",
		"content://sms/inbox",
		"content://sms/sent",
		"content://sms/draft",
		"content://sms/conversations",
		"content://mms",
		"content://mms-sms/conversations",
	} {
		if err := dev.ContentDelete(uri); err != nil {
			m.log.Warn().Err(err).Str("uri", uri).Msg("provider delete failed")
		}
	}
	m.log.Info().Msg("cleared sms store")
	return m.refresh()
}

func (m *SMS) addMessage(number, text string, received bool) error {
	dev := m.dev()
	clean := phoneJunk.ReplaceAllString(number, "")

	if received {
		if err := dev.SendSMS(clean, text); err != nil {
			return err
		}
	} else {
		// type=2 marks the row as sent, read=1 keeps it out of the unread
		// badge.
		stmt := configure.InsertStatement("sms",
			[]string{"address", "date", "body", "read", "type"},
			[]any{clean, m.now().UnixMilli(), text, 1, 2})
		if err := dev.ExecuteSQL(configure.TelephonyDBPath, stmt); err != nil {
			return err
		}
	}
	return m.refresh()
}

func (m *SMS) refresh() error {
	return m.dev().BroadcastIntent("android.provider.Telephony.SMS_RECEIVED", "")
}

var conversationPartners = []struct {
	name, number string
}{
	{"Alice Johnson", "+1234567890"},
	{"Bob Smith", "+1234567891"},
	{"Carol Davis", "+1234567892"},
	{"David Wilson", "+1234567893"},
	{"Emma Brown", "+1234567894"},
	{"Frank Miller", "+1234567895"},
	{"Grace Lee", "+1234567896"},
	{"Henry Taylor", "+1234567897"},
}

var conversationOpeners = []string{
	"Hey, how are you doing?",
	"Are you free for lunch today?",
	"Thanks for your help yesterday!",
	"Can you call me when you get this?",
	"See you at the meeting tomorrow",
	"Don't forget about dinner tonight",
	"Did you see the news?",
	"Running a bit late, will be there soon",
	"What time works best for you?",
	"Hope everything is going well",
}

var conversationReplies = []string{
	"Great, thanks for asking!",
	"Yes, that sounds good",
	"You're welcome!",
	"Sure, I'll call you in a few minutes",
	"Looking forward to it",
	"Sounds perfect",
	"Yes, quite surprising!",
	"No worries, take your time",
	"How about 2 PM?",
	"No problem at all",
}

func (m *SMS) addRandomConversations(count int) {
	const maxPerConversation = 5
	if count > len(conversationPartners) {
		count = len(conversationPartners)
	}
	for i := 0; i < count; i++ {
		partner := conversationPartners[i]
		messages := rand.Intn(maxPerConversation) + 1
		for j := 0; j < messages; j++ {
			received := j%2 == 0
			text := conversationReplies[rand.Intn(len(conversationReplies))]
			if received {
				text = conversationOpeners[rand.Intn(len(conversationOpeners))]
			}
			if err := m.addMessage(partner.number, text, received); err != nil {
				m.log.Error().Err(err).Str("partner", partner.name).Msg("random message failed")
			}
		}
		m.log.Info().Str("partner", partner.name).Int("messages", messages).
			Msg(fmt.Sprintf("conversation %d seeded", i+1))
	}
}
