package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jimezsa/czynsz/internal/site"
	"github.com/joho/godotenv"
)

const (
	DirName          = "czynsz"
	SettingsFileName = "config.txt"
	ProxiesFileName  = "proxies.txt"

	KeySleepTime = "sleep_time"
	KeyCostLimit = "cost_limit"

	DefaultSleepTime = "2"
	DefaultCostLimit = "0"
)

var ErrMalformed = errors.New("malformed settings")

// Settings are the options one pipeline run works with.
type Settings struct {
	SleepTime time.Duration
	// CostLimit is +Inf when the file says 0.
	CostLimit float64
	URLs      map[string]string
}

func (s Settings) Unlimited() bool {
	return math.IsInf(s.CostLimit, 1)
}

func (s Settings) URL(siteName string) string {
	return s.URLs[siteName]
}

func URLKey(siteName string) string {
	return siteName + "_url"
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

// Store reads and writes the key=value settings file. The expected keys
// are sleep_time, cost_limit and one <site>_url per registered site.
type Store struct {
	dir   string
	sites *site.Registry
}

func NewStore(dir string, sites *site.Registry) *Store {
	return &Store{dir: dir, sites: sites}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path() string {
	return filepath.Join(s.dir, SettingsFileName)
}

func (s *Store) Defaults() map[string]string {
	values := map[string]string{
		KeySleepTime: DefaultSleepTime,
		KeyCostLimit: DefaultCostLimit,
	}
	for _, adapter := range s.sites.All() {
		values[URLKey(adapter.Name())] = adapter.DefaultURL()
	}
	return values
}

// Load reads the settings file. A missing or malformed file is replaced
// with defaults and read again; recovered reports when that happened.
func (s *Store) Load() (settings Settings, recovered bool, err error) {
	settings, err = s.read()
	if err == nil {
		return settings, false, nil
	}
	if !errors.Is(err, ErrMalformed) && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, false, err
	}

	if err := s.Recover(); err != nil {
		return Settings{}, false, err
	}
	settings, err = s.read()
	if err != nil {
		return Settings{}, true, err
	}
	return settings, true, nil
}

// Recover overwrites the settings file with defaults.
func (s *Store) Recover() error {
	return s.write(s.Defaults())
}

// Init writes defaults unless a settings file already exists.
func (s *Store) Init() (bool, error) {
	if _, err := os.Stat(s.Path()); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := s.Recover(); err != nil {
		return false, err
	}
	return true, nil
}

// SetURL stores the results page URL for a site and returns the reloaded
// settings.
func (s *Store) SetURL(siteName string, rawURL string) (Settings, error) {
	if _, err := s.sites.Lookup(siteName); err != nil {
		return Settings{}, err
	}
	if _, _, err := s.Load(); err != nil {
		return Settings{}, err
	}

	values, err := godotenv.Read(s.Path())
	if err != nil {
		return Settings{}, err
	}
	values[URLKey(siteName)] = strings.TrimSpace(rawURL)
	if err := s.write(values); err != nil {
		return Settings{}, err
	}

	settings, _, err := s.Load()
	return settings, err
}

func (s *Store) read() (Settings, error) {
	values, err := godotenv.Read(s.Path())
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return Settings{}, err
		}
		return Settings{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s.parse(values)
}

func (s *Store) parse(values map[string]string) (Settings, error) {
	expected := s.Defaults()
	if len(values) != len(expected) {
		return Settings{}, fmt.Errorf("%w: expected %d keys, found %d", ErrMalformed, len(expected), len(values))
	}
	for key := range expected {
		if _, ok := values[key]; !ok {
			return Settings{}, fmt.Errorf("%w: missing %s", ErrMalformed, key)
		}
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(values[KeySleepTime]), 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Settings{}, fmt.Errorf("%w: %s must be a non-negative number of seconds", ErrMalformed, KeySleepTime)
	}
	limit, err := strconv.Atoi(strings.TrimSpace(values[KeyCostLimit]))
	if err != nil || limit < 0 {
		return Settings{}, fmt.Errorf("%w: %s must be a non-negative integer", ErrMalformed, KeyCostLimit)
	}

	settings := Settings{
		SleepTime: time.Duration(seconds * float64(time.Second)),
		CostLimit: float64(limit),
		URLs:      map[string]string{},
	}
	if limit == 0 {
		settings.CostLimit = math.Inf(1)
	}
	for _, name := range s.sites.Names() {
		value := strings.TrimSpace(values[URLKey(name)])
		if value == "" {
			return Settings{}, fmt.Errorf("%w: %s is empty", ErrMalformed, URLKey(name))
		}
		settings.URLs[name] = value
	}
	return settings, nil
}

// write stores values as unquoted key=value lines in the order of keys().
func (s *Store) write(values map[string]string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	var b strings.Builder
	for _, key := range s.keys() {
		fmt.Fprintf(&b, "%s=%s\n", key, strings.TrimSpace(values[key]))
	}
	return os.WriteFile(s.Path(), []byte(b.String()), 0o644)
}

func (s *Store) keys() []string {
	keys := []string{KeySleepTime, KeyCostLimit}
	for _, name := range s.sites.Names() {
		keys = append(keys, URLKey(name))
	}
	return keys
}

// LoadProxies returns proxies from the flag value, CZYNSZ_PROXIES or
// proxies.txt in dir, in that order.
func LoadProxies(flagValue string, dir string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("CZYNSZ_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	data, err := os.ReadFile(filepath.Join(dir, ProxiesFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
