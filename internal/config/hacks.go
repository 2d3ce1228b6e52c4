package config

// A small number of marketplace plugins need special treatment: some ids trip
// up the details endpoint unless queried under an alias, others publish
// artifacts that cannot be hashed at all. This is an explicit exception
// table, never inferred.

// detailsAliases maps a plugin id to the id that must be used for the
// details request only. The database still records the real id.
var detailsAliases = map[string]string{
	// The former is the real ID, but it trips up the plugin endpoint.
	"23.bytecode-disassembler": "bytecode-disassembler",
}

// brokenPlugins lists plugin ids that are skipped entirely, with the reason.
var brokenPlugins = map[string]string{
	"com.valord577.mybatis-navigator":        "invalid version numbers",
	"io.github.kings1990.FastRequest":        "ZIP contains invalid file names",
	"com.majera.intellij.codereview.gitlab":  "ZIP contains invalid file names",
}

// PluginDetailsID returns the id to query the details endpoint with, or
// false if the plugin is known broken and must be skipped.
func PluginDetailsID(pluginID string) (string, bool) {
	if _, broken := brokenPlugins[pluginID]; broken {
		return "", false
	}
	if alias, ok := detailsAliases[pluginID]; ok {
		return alias, true
	}
	return pluginID, true
}

// BrokenPluginReason returns why a plugin is on the skip list.
func BrokenPluginReason(pluginID string) string {
	return brokenPlugins[pluginID]
}
