package config

import (
	"time"

	"github.com/startcommunity/startbot/src/forum"
	"gorm.io/gorm"
)

// Roles names the guild roles the bot manages. Each value may be a role ID
// or a role name.
type Roles struct {
	Verified   string
	Unverified string
	Admin      string
	Bot        string
	Staff      string
	// Tracks maps a start track to its role.
	Tracks map[string]string
}

func loadRoles() Roles {
	return Roles{
		Verified:   GetSetting("verified_role", "VERIFIED_ROLE_VALUE", "Start Member"),
		Unverified: GetSetting("unverified_role", "UNVERIFIED_ROLE_VALUE", "Unverified"),
		Admin:      GetSetting("admin_role", "ADMIN_ROLE_VALUE", "Admin"),
		Bot:        GetSetting("bot_role", "BOT_ROLE_VALUE", "Bots"),
		Staff:      GetSetting("staff_role", "OCULUS_STAFF_ROLE_VALUE", "Official Oculus"),
		Tracks: map[string]string{
			"normal": GetSetting("track_normal_role", "TRACK_NORMAL_ROLE", "Start Member"),
			"growth": GetSetting("track_growth_role", "TRACK_GROWTH_ROLE", "Start Growth"),
			"alumni": GetSetting("track_alumni_role", "TRACK_ALUMNI_ROLE", "Start Alumni"),
		},
	}
}

// ForumConfig controls how profiles are fetched.
type ForumConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	RetryAttempts     int
	RetryDelay        time.Duration
}

func loadForum() ForumConfig {
	return ForumConfig{
		BaseURL:           GetSetting("forum_base_url", "FORUM_BASE_URL", forum.DefaultBaseURL),
		Timeout:           getDurationSetting("forum_timeout", "FORUM_TIMEOUT", forum.DefaultTimeout),
		RequestsPerSecond: float64(getIntSetting("forum_rps", "FORUM_RPS", 2)),
		RetryAttempts:     getIntSetting("forum_retry_attempts", "FORUM_RETRY_ATTEMPTS", 3),
		RetryDelay:        getDurationSetting("forum_retry_delay", "FORUM_RETRY_DELAY", 2*time.Second),
	}
}

// ClientOptions converts the config for forum.NewClient.
func (c ForumConfig) ClientOptions() forum.ClientOptions {
	return forum.ClientOptions{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// VerifyConfig holds /verify configuration
type VerifyConfig struct {
	Base
	Forum    ForumConfig
	Roles    Roles
	Cooldown time.Duration
	Enabled  bool
}

// LoadVerifyConfig loads /verify configuration
func LoadVerifyConfig(db *gorm.DB) VerifyConfig {
	return VerifyConfig{
		Base:     LoadBase(db),
		Forum:    loadForum(),
		Roles:    loadRoles(),
		Cooldown: getDurationSetting("verify_cooldown", "VERIFY_COOLDOWN", 30*time.Second),
		Enabled:  getBoolSetting("enable_verify", "ENABLE_VERIFY", true),
	}
}

// MembersConfig holds profile command configuration
type MembersConfig struct {
	Base
	Forum      ForumConfig
	Roles      Roles
	PictureTTL time.Duration
	Enabled    bool
}

// LoadMembersConfig loads profile command configuration
func LoadMembersConfig(db *gorm.DB) MembersConfig {
	return MembersConfig{
		Base:       LoadBase(db),
		Forum:      loadForum(),
		Roles:      loadRoles(),
		PictureTTL: getDurationSetting("picture_cache_ttl", "PICTURE_CACHE_TTL", time.Hour),
		Enabled:    getBoolSetting("enable_members", "ENABLE_MEMBERS", true),
	}
}

// EventsConfig holds /event configuration
type EventsConfig struct {
	Base
	Enabled bool
}

// LoadEventsConfig loads /event configuration
func LoadEventsConfig(db *gorm.DB) EventsConfig {
	return EventsConfig{
		Base:    LoadBase(db),
		Enabled: getBoolSetting("enable_events", "ENABLE_EVENTS", true),
	}
}

// AdminConfig holds /stats and /dm configuration
type AdminConfig struct {
	Base
	Roles   Roles
	Enabled bool
}

// LoadAdminConfig loads /stats and /dm configuration
func LoadAdminConfig(db *gorm.DB) AdminConfig {
	return AdminConfig{
		Base:    LoadBase(db),
		Roles:   loadRoles(),
		Enabled: getBoolSetting("enable_admin", "ENABLE_ADMIN", true),
	}
}

// APIConfig holds registration API configuration
type APIConfig struct {
	Base
	Listen         string
	JWTSecret      string
	AllowedOrigins []string
	RequestsPerMin int
	Enabled        bool
}

// LoadAPIConfig loads registration API configuration
func LoadAPIConfig(db *gorm.DB) APIConfig {
	return APIConfig{
		Base:           LoadBase(db),
		Listen:         GetSetting("api_listen", "API_LISTEN", ":8080"),
		JWTSecret:      GetSetting("jwt_secret", "JWT_SECRET", ""),
		AllowedOrigins: parseCSV(GetSetting("api_allowed_origins", "API_ALLOWED_ORIGINS", "")),
		RequestsPerMin: getIntSetting("api_requests_per_min", "API_REQUESTS_PER_MIN", 60),
		Enabled:        getBoolSetting("enable_api", "ENABLE_API", false),
	}
}
