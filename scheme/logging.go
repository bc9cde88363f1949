package scheme

import "go.uber.org/zap"

// blockField is the zap field every log line about a single block uses,
// kept in one place so the key name ("block") stays consistent across
// scheme.go/enable.go/update.go.
func blockField(name string) zap.Field {
	return zap.String("block", name)
}

// namesField is blockField's plural counterpart, for group-expanded
// bulk operations.
func namesField(key string, names []string) zap.Field {
	return zap.Strings(key, names)
}
