package config

// KeyBindings defines the mapping of actions to keys. Each action accepts
// several keys; they can be overridden under "keys" in the config file.
type KeyBindings struct {
	Quit       []string `mapstructure:"quit" yaml:"quit"`
	Help       []string `mapstructure:"help" yaml:"help"`
	Next       []string `mapstructure:"next" yaml:"next"`
	Prev       []string `mapstructure:"prev" yaml:"prev"`
	First      []string `mapstructure:"first" yaml:"first"`
	Last       []string `mapstructure:"last" yaml:"last"`
	Goto       []string `mapstructure:"goto" yaml:"goto"`
	Up         []string `mapstructure:"up" yaml:"up"`
	Down       []string `mapstructure:"down" yaml:"down"`
	HalfUp     []string `mapstructure:"half_up" yaml:"half_up"`
	HalfDown   []string `mapstructure:"half_down" yaml:"half_down"`
	Rescan     []string `mapstructure:"rescan" yaml:"rescan"`
	Reload     []string `mapstructure:"reload" yaml:"reload"`
	ToggleAnim []string `mapstructure:"toggle_animation" yaml:"toggle_animation"`
}

// DefaultKeyBindings returns the default key bindings.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Quit:       []string{"q", "ctrl+c"},
		Help:       []string{"?"},
		Next:       []string{"l", "right", " ", "n"},
		Prev:       []string{"h", "left", "b", "p"},
		First:      []string{"g", "home"},
		Last:       []string{"G", "end"},
		Goto:       []string{":"},
		Up:         []string{"k", "up"},
		Down:       []string{"j", "down"},
		HalfUp:     []string{"pgup", "ctrl+u"},
		HalfDown:   []string{"pgdown", "ctrl+d"},
		Rescan:     []string{"r"},
		Reload:     []string{"R"},
		ToggleAnim: []string{"a"},
	}
}

// defaultFile is written by "config init".
const defaultFile = `# zpv configuration
# Every key can also be set through the environment, e.g. ZPV_THEME=light.

# dark or light
theme: dark

# horizontal or vertical
axis: horizontal

# Pages prepared ahead of the viewport on each side.
prefetch_pages: 1

animate: true
animation_ms: 250
deceleration_ms: 180
bounces: true

# Files the deck shows.
extensions: [".md", ".markdown", ".txt"]
word_wrap: true

# Rescan when files in the directory change.
watch: true
watch_debounce_ms: 300

# Drop pooled pages and cached renderings when system memory use
# crosses this percentage. 0 disables the check.
memory_threshold: 90
memory_poll_seconds: 10

# Logs are discarded unless a file is set.
log_file: ""
log_level: info
log_format: console
`
