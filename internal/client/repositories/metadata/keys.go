package metadata

// Storage keys. Cache keys are built with CacheKey/CacheTimeKey.
const (
	KeyServerURL    = "server_url"
	KeyAuthToken    = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyUserIdentity = "user_identity"
	KeyDatabase     = "database"
	KeyModuleOrder  = "module_order"
	KeyBranding     = "branding"

	CachePrefix = "cache:"
)

// SessionKeys are wiped on logout or an unrecoverable 401.
var SessionKeys = []string{KeyAuthToken, KeyRefreshToken, KeyUserIdentity, KeyDatabase}

// CacheKey is the payload key of a resource's cached collection.
func CacheKey(resource string) string { return CachePrefix + resource }

// CacheTimeKey is the store-timestamp key paired with CacheKey.
func CacheTimeKey(resource string) string { return CachePrefix + resource + ":stored_at" }
