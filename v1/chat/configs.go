package chat

const (
	DefaultHistoryWindow    = 10
	DefaultTitleLength      = 50
	DefaultMaxMessageLength = 10000
)

// Config holds chat turn limits.
type Config struct {
	// HistoryWindow is the number of stored turns loaded as conversation history.
	HistoryWindow int `yaml:"history_window" koanf:"history_window" env:"CHAT_HISTORY_WINDOW"`

	// TitleLength is the number of characters of the first message used as session title.
	TitleLength int `yaml:"title_length" koanf:"title_length" env:"CHAT_TITLE_LENGTH"`

	// MaxMessageLength bounds the user message in characters.
	MaxMessageLength int `yaml:"max_message_length" koanf:"max_message_length" env:"CHAT_MAX_MESSAGE_LENGTH"`
}

// DefaultConfig returns the chat settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		HistoryWindow:    DefaultHistoryWindow,
		TitleLength:      DefaultTitleLength,
		MaxMessageLength: DefaultMaxMessageLength,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = d.HistoryWindow
	}
	if c.TitleLength <= 0 {
		c.TitleLength = d.TitleLength
	}
	if c.MaxMessageLength <= 0 {
		c.MaxMessageLength = d.MaxMessageLength
	}
	return c
}
