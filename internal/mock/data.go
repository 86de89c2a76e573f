package mock

import (
	"strconv"
	"time"
)

// Canned lines replayed by Server.Run.
var (
	DetectionEvents = []string{
		"🎮 [Gameserver] 🕑 Server is starting up...",
		"🎮 [Gameserver] ✅ Server process has started!",
		"🎮 [Gameserver] ⚙️ Setting StartLocalHost changed from False to True",
		"🎮 [Gameserver] 🔔 Server is ready to connect!",
		"🎮 [Gameserver] 💾 World Saved: BackupIndex: 9 UTC Time: 2025-03-30T12:40:08Z",
		"🎮 [Gameserver] 📡 Player BobTheBuilder connecting from 192.168.1.100",
		"🎮 [Gameserver] 📡 Player BobTheBuilder ready",
		"🎮 [Gameserver] 📡 Player SpaceCowboy connecting from 192.168.1.101",
		"🎮 [Gameserver] 📡 Player SpaceCowboy ready",
		"🎮 [Gameserver] 💀 Player BobTheBuilder disconnected",
		"🎮 [Gameserver] ❌ Exception in thread 'main': unity.Exception: random.unity.exeption  caught and handled",
		"🎮 [Gameserver] 🚨 Server is stopping...",
		"🎮 [Gameserver] 🚨 Server process has stopped!",
	}

	ConsoleMessages = []string{
		"Preview mode active, simulating after-startconsole output",
		"***Stationeers - 0.2.5499.24517***",
		"loaded 48 systems successfully",
		"game manager initialized",
		"World Loaded in 0:0",
		"RocketNet Succesfully hosted with Address: 0.0.0.0 Port: 27016",
		"14:40:06: StartSession. config:",
		"gameName: Preview Server",
		"mapName: Preview Server",
		"No clients connected. Auto pause timer started (10000ms)",
		"Ready",
	}

	LogMessages = map[string][]string{
		"info":  {"2025-03-30 12:40:08 /INFO [Backup] backup 9 written", "2025-03-30 12:41:00 /INFO [Core] config reloaded"},
		"warn":  {"2025-03-30 12:42:13 /WARN [Discord] bot token missing, integration disabled"},
		"error": {"2025-03-30 12:43:55 /ERROR [SteamCMD] download failed, will retry"},
	}
)

// Player is one connected player on the wire.
type Player struct {
	Username string `json:"username"`
	SteamID  string `json:"steamID"`
}

// Backup is one backup set on the wire.
type Backup struct {
	Index    int       `json:"Index"`
	BinFile  string    `json:"BinFile"`
	XMLFile  string    `json:"XMLFile,omitempty"`
	MetaFile string    `json:"MetaFile,omitempty"`
	ModTime  time.Time `json:"ModTime"`
}

// Setting is one catalog entry on the wire.
type Setting struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Group       string      `json:"group"`
	Description string      `json:"description"`
	Value       interface{} `json:"value"`
	Min         *int        `json:"min,omitempty"`
	Max         *int        `json:"max,omitempty"`
	Required    bool        `json:"required"`
}

func intptr(v int) *int { return &v }

func defaultPlayers() map[string]Player {
	return map[string]Player{
		"c1": {Username: "BobTheBuilder", SteamID: "76561198000000001"},
		"c2": {Username: "SpaceCowboy", SteamID: "76561198000000002"},
	}
}

func defaultBackups(now time.Time) []Backup {
	backups := make([]Backup, 0, 8)
	for i := 8; i >= 1; i-- {
		at := now.Add(-time.Duration(9-i) * 26 * time.Hour)
		b := Backup{Index: i, BinFile: "saves/Preview/Backup/" + strconv.Itoa(i) + ".save", ModTime: at}
		if i <= 3 {
			b.BinFile = "saves/Preview/Backup/world(" + strconv.Itoa(i) + ").bin"
			b.XMLFile = "saves/Preview/Backup/world(" + strconv.Itoa(i) + ").xml"
			b.MetaFile = "saves/Preview/Backup/world_meta(" + strconv.Itoa(i) + ").xml"
		}
		backups = append(backups, b)
	}
	return backups
}

func defaultSettings() []Setting {
	return []Setting{
		{Name: "ServerName", Type: "string", Group: "Basic", Description: "Name shown in the server browser.", Value: "Preview Server", Required: true},
		{Name: "ServerVisible", Type: "bool", Group: "Basic", Description: "List the server publicly.", Value: true},
		{Name: "ServerMaxPlayers", Type: "int", Group: "Basic", Description: "Player slots.", Value: 8, Min: intptr(1), Max: intptr(64)},
		{Name: "SaveInfo", Type: "string", Group: "World", Description: "World save name and type.", Value: "Preview Lunar"},
		{Name: "AutoSave", Type: "bool", Group: "World", Description: "Save the world periodically.", Value: true},
		{Name: "SaveInterval", Type: "int", Group: "World", Description: "Seconds between autosaves.", Value: 300, Min: intptr(60)},
		{Name: "IsDiscordEnabled", Type: "bool", Group: "Discord", Description: "Run the Discord bot.", Value: false},
		{Name: "AdminIDs", Type: "array", Group: "Discord", Description: "Discord user ids allowed to run admin commands.", Value: []string{}},
		{Name: "BackupKeepLastN", Type: "int", Group: "Backups", Description: "Backups kept before cleanup.", Value: 2000, Min: intptr(1)},
		{Name: "ExtraLaunchArgs", Type: "map", Group: "Advanced", Description: "Additional launch arguments passed to the game server.", Value: map[string]string{}},
	}
}
