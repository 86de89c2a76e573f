package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// ServerStatus is the polled game-server state.
type ServerStatus struct {
	IsRunning bool   `json:"isRunning"`
	UUID      string `json:"uuid,omitempty"`
}

// Player is one connected player.
type Player struct {
	ID       string `json:"-"`
	Username string `json:"username"`
	SteamID  string `json:"steamID"`
}

// Backup is one save-game backup set.
type Backup struct {
	Index    int       `json:"Index"`
	BinFile  string    `json:"BinFile"`
	XMLFile  string    `json:"XMLFile"`
	MetaFile string    `json:"MetaFile"`
	ModTime  time.Time `json:"ModTime"`
}

// Type classifies a backup by the files it consists of.
func (b Backup) Type() string {
	switch {
	case b.BinFile != "" && b.XMLFile != "" && b.MetaFile != "":
		return "Legacy"
	case b.BinFile != "" && b.XMLFile == "" && b.MetaFile == "":
		return "Dotsave"
	default:
		return "Unknown"
	}
}

// FileName is the base name of the backup's bin file.
func (b Backup) FileName() string {
	name := b.BinFile
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' || name[i] == '\\' {
			return name[i+1:]
		}
	}
	return name
}

// ServerStatus fetches /api/v2/server/status.
func (c *Client) ServerStatus(ctx context.Context) (ServerStatus, error) {
	var status ServerStatus
	err := c.JSON(ctx, http.MethodGet, "/api/v2/server/status", nil, &status)
	return status, err
}

// ConnectedPlayers fetches the player list. The backend sends a list of
// single-key objects keyed by connection id; anything that is not a list means
// nobody is connected.
func (c *Client) ConnectedPlayers(ctx context.Context) ([]Player, error) {
	var raw json.RawMessage
	if err := c.JSON(ctx, http.MethodGet, "/api/v2/server/status/connectedplayers", nil, &raw); err != nil {
		return nil, err
	}
	return decodePlayers(raw)
}

func decodePlayers(raw json.RawMessage) ([]Player, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}
	var entries []map[string]Player
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("decode players: %w", err)
	}
	players := make([]Player, 0, len(entries))
	for _, entry := range entries {
		keys := make([]string, 0, len(entry))
		for k := range entry {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) == 0 {
			continue
		}
		p := entry[keys[0]]
		p.ID = keys[0]
		players = append(players, p)
	}
	return players, nil
}

// Backups lists backups, newest first as the backend orders them. limit <= 0
// means no limit.
func (c *Client) Backups(ctx context.Context, limit int) ([]Backup, error) {
	endpoint := "/api/v2/backups"
	if limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(limit)
	}
	var backups []Backup
	if err := c.JSON(ctx, http.MethodGet, endpoint, nil, &backups); err != nil {
		return nil, err
	}
	return backups, nil
}

// RestoreBackup asks the backend to restore backup index and returns its
// status text.
func (c *Client) RestoreBackup(ctx context.Context, index int) (string, error) {
	q := url.Values{"index": []string{strconv.Itoa(index)}}
	return c.Text(ctx, http.MethodGet, "/api/v2/backups/restore?"+q.Encode(), nil)
}

// StartServer starts the game server.
func (c *Client) StartServer(ctx context.Context) (string, error) {
	return c.Text(ctx, http.MethodGet, "/start", nil)
}

// StopServer stops the game server.
func (c *Client) StopServer(ctx context.Context) (string, error) {
	return c.Text(ctx, http.MethodGet, "/stop", nil)
}

// RunSteamCMD triggers a SteamCMD update run.
func (c *Client) RunSteamCMD(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.JSON(ctx, http.MethodGet, "/api/v2/steamcmd/run", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// SSCMEnabled reports whether the command bridge is available.
func (c *Client) SSCMEnabled(ctx context.Context) bool {
	resp, err := c.Do(ctx, http.MethodGet, "/api/v2/SSCM/enabled", nil)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// RunSSCM sends a console command through the command bridge and returns the
// line to echo into the console panel.
func (c *Client) RunSSCM(ctx context.Context, command string) (string, error) {
	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	in := map[string]string{"command": command}
	if err := c.JSON(ctx, http.MethodPost, "/api/v2/SSCM/run", in, &out); err != nil {
		if msg := ServerMessage(err); msg != "" {
			return "", fmt.Errorf("[SSCM] Error: %s", msg)
		}
		return "", fmt.Errorf("[SSCM] Error: Failed to send command %q", command)
	}
	if out.Status != "success" {
		msg := out.Message
		if msg == "" {
			msg = "Command failed"
		}
		return "", fmt.Errorf("[SSCM] Error: %s", msg)
	}
	return fmt.Sprintf("[SSCM] %s: %s", out.Message, command), nil
}
