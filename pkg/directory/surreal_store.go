package directory

import (
	"fmt"

	"twinhost/pkg/surreal"
	"twinhost/pkg/twin"
)

type SurrealStore struct {
	client *surreal.Client
}

func NewSurrealStore(client *surreal.Client) *SurrealStore {
	store := &SurrealStore{
		client: client,
	}
	if err := store.Init(); err != nil {
		// Log error but don't fail startup, as DB might be reachable later or schema exists
		fmt.Printf("Warning: Failed to initialize SurrealDB schema: %v\n", err)
	}
	return store
}

func (s *SurrealStore) Init() error {
	query := `
		DEFINE TABLE IF NOT EXISTS twins SCHEMAFULL;
		DEFINE FIELD IF NOT EXISTS name ON twins TYPE string;
		DEFINE FIELD IF NOT EXISTS display_name ON twins TYPE string;
		DEFINE FIELD IF NOT EXISTS twin_id ON twins TYPE string;
		DEFINE FIELD IF NOT EXISTS api_endpoint ON twins TYPE string;
		DEFINE FIELD IF NOT EXISTS minecraft_username ON twins TYPE option<string>;
		DEFINE FIELD IF NOT EXISTS last_updated ON twins TYPE int;
	`
	_, err := s.client.Query(query, map[string]interface{}{})
	return err
}

func (s *SurrealStore) Upsert(profile *twin.Profile) error {
	query := `
		INSERT INTO twins (id, name, display_name, twin_id, api_endpoint, minecraft_username, last_updated)
		VALUES (type::thing("twins", $name), $name, $display_name, $twin_id, $api_endpoint, $minecraft_username, time::unix())
		ON DUPLICATE KEY UPDATE
			display_name = $display_name,
			twin_id = $twin_id,
			api_endpoint = $api_endpoint,
			minecraft_username = $minecraft_username,
			last_updated = time::unix();
	`
	_, err := s.client.Query(query, map[string]interface{}{
		"name":               profile.Name,
		"display_name":       profile.DisplayName,
		"twin_id":            profile.TwinID,
		"api_endpoint":       profile.APIEndpoint,
		"minecraft_username": profile.MinecraftUsername,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert twin %q: %w", profile.Name, err)
	}
	return nil
}

func (s *SurrealStore) GetByName(name string) (*twin.Profile, error) {
	query := `SELECT * FROM type::thing("twins", $name);`
	result, err := s.client.Query(query, map[string]interface{}{"name": name})
	if err != nil {
		return nil, err
	}

	rows := unwrapRows(result)
	if len(rows) == 0 {
		return nil, &twin.NotFoundError{Kind: "twin", Name: name}
	}

	profile := profileFromRow(rows[0])
	if profile == nil {
		return nil, fmt.Errorf("unexpected row format for twin %q", name)
	}
	return profile, nil
}

func (s *SurrealStore) ListAll() ([]*twin.Profile, error) {
	query := `SELECT * FROM twins ORDER BY name;`
	result, err := s.client.Query(query, map[string]interface{}{})
	if err != nil {
		return nil, err
	}

	var profiles []*twin.Profile
	for _, row := range unwrapRows(result) {
		if p := profileFromRow(row); p != nil {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

// unwrapRows digs the row slice out of the driver's nested response shape.
func unwrapRows(result interface{}) []interface{} {
	if rows, ok := result.([]interface{}); ok {
		// Either already rows, or a slice of {result: rows} query envelopes.
		if len(rows) > 0 {
			if envelope, ok := rows[0].(map[string]interface{}); ok {
				if val, ok := envelope["result"]; ok {
					if inner, ok := val.([]interface{}); ok {
						return inner
					}
				}
			}
		}
		return rows
	}
	return nil
}

func profileFromRow(row interface{}) *twin.Profile {
	m, ok := row.(map[string]interface{})
	if !ok {
		return nil
	}

	name, _ := m["name"].(string)
	displayName, _ := m["display_name"].(string)
	twinID, _ := m["twin_id"].(string)
	endpoint, _ := m["api_endpoint"].(string)
	mcUsername, _ := m["minecraft_username"].(string)

	if name == "" || twinID == "" {
		return nil
	}

	return &twin.Profile{
		Name:              name,
		DisplayName:       displayName,
		TwinID:            twinID,
		APIEndpoint:       endpoint,
		MinecraftUsername: mcUsername,
	}
}
