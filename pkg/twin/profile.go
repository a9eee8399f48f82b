package twin

import "strings"

// Profile identifies an imported twin persona. Profiles are immutable after
// import and keyed in the directory by Name.
type Profile struct {
	Name              string `json:"name"`
	DisplayName       string `json:"display_name"`
	TwinID            string `json:"twin_id"`
	APIEndpoint       string `json:"api_endpoint"`
	MinecraftUsername string `json:"minecraft_username,omitempty"`
}

// Reply is one chat exchange result. AudioLocator may be empty, relative or
// absolute; nothing here is persisted.
type Reply struct {
	Text         string `json:"text"`
	AudioLocator string `json:"audio_locator,omitempty"`
}

// DeriveName picks the session handle for a fetched profile. The handle comes
// from the remote profile, never from the locator the operator typed.
func DeriveName(displayName, minecraftUsername string) string {
	if minecraftUsername != "" {
		return strings.ToLower(minecraftUsername)
	}
	name := strings.ToLower(strings.TrimSpace(displayName))
	return strings.Join(strings.Fields(name), "_")
}
