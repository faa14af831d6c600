package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lemurdu20/LeMuRobot/models"
	"github.com/lemurdu20/LeMuRobot/utils"
)

// FileGuildSettingsRepository persists the whole DataStore document as one
// JSON file with rotating backups. A single mutex serializes every mutation
// (read-modify-write against the latest document), which is what guarantees
// exactly-one winner for concurrent AddResubscribedMember calls. Reads are
// served from an in-memory cache once loaded.
type FileGuildSettingsRepository struct {
	mu          sync.Mutex
	path        string
	backupCount int
	logger      *log.Logger

	cache      *models.DataStore
	cacheValid bool
}

// NewFileGuildSettingsRepository creates a store rooted at dataDir. The
// directory is created on first write.
func NewFileGuildSettingsRepository(dataDir string, logger *log.Logger) *FileGuildSettingsRepository {
	if logger == nil {
		logger = log.Default()
	}
	return &FileGuildSettingsRepository{
		path:        filepath.Join(dataDir, utils.StoreFileName),
		backupCount: utils.StoreBackupCount,
		logger:      logger,
	}
}

// Get returns the guild's settings or empty defaults. It never fails: a
// corrupt primary is restored from the newest valid backup, and when no
// backup parses the store starts over empty.
func (r *FileGuildSettingsRepository) Get(guildID string) models.GuildSettings {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := r.loadLocked()
	return data.Guilds[guildID].Clone()
}

// Patch merges the provided fields into the guild's settings and persists
// the full document. Backup rotation happens before the write so a failed
// write never corrupts previously-good backups.
func (r *FileGuildSettingsRepository) Patch(guildID string, patch GuildSettingsPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := r.loadLocked()
	settings := data.Guilds[guildID]

	if patch.LogChannelID != nil {
		settings.LogChannelID = *patch.LogChannelID
	}
	if patch.LastRelanceAt != nil {
		at := utils.TimeToUTC(*patch.LastRelanceAt)
		settings.LastRelanceAt = &at
	}
	if patch.Campaign != nil {
		settings.CurrentCampaign = patch.Campaign.Value.Clone()
	}

	data.Guilds[guildID] = settings
	return r.saveLocked(data)
}

// GetCampaign returns the guild's active campaign, or nil.
func (r *FileGuildSettingsRepository) GetCampaign(guildID string) *models.Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadLocked().Guilds[guildID].CurrentCampaign.Clone()
}

// SetCampaign stores the campaign as the guild's current one. A nil campaign
// clears the slot.
func (r *FileGuildSettingsRepository) SetCampaign(guildID string, campaign *models.Campaign) error {
	if campaign != nil {
		if err := campaign.Validate(); err != nil {
			return fmt.Errorf("refusing to store campaign for guild %s: %w", guildID, err)
		}
	}
	return r.Patch(guildID, GuildSettingsPatch{Campaign: &CampaignSlot{Value: campaign}})
}

// ClearCampaign removes the guild's current campaign.
func (r *FileGuildSettingsRepository) ClearCampaign(guildID string) error {
	return r.SetCampaign(guildID, nil)
}

// AddResubscribedMember performs the duplicate-checked insert at the heart
// of the confirmation race guard. The check and the append happen under the
// same mutex hold, against the freshly loaded document.
func (r *FileGuildSettingsRepository) AddResubscribedMember(guildID, memberID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := r.loadLocked()
	settings, ok := data.Guilds[guildID]
	if !ok || settings.CurrentCampaign == nil {
		return false, nil
	}
	if settings.CurrentCampaign.HasResubscribed(memberID) {
		return false, nil
	}

	settings.CurrentCampaign.ResubscribedMembers = append(settings.CurrentCampaign.ResubscribedMembers, memberID)
	data.Guilds[guildID] = settings

	if err := r.saveLocked(data); err != nil {
		return false, err
	}
	return true, nil
}

// SetLogChannel records the guild's notification channel.
func (r *FileGuildSettingsRepository) SetLogChannel(guildID, channelID string) error {
	return r.Patch(guildID, GuildSettingsPatch{LogChannelID: &channelID})
}

// SetLastRelanceAt records when the last reminder broadcast was sent.
func (r *FileGuildSettingsRepository) SetLastRelanceAt(guildID string, at time.Time) error {
	return r.Patch(guildID, GuildSettingsPatch{LastRelanceAt: &at})
}

// GuildsWithCampaign lists all guilds currently holding a campaign.
func (r *FileGuildSettingsRepository) GuildsWithCampaign() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadLocked().GuildsWithCampaign()
}

// InvalidateCache forces the next read to re-load from disk. Test hook only.
func (r *FileGuildSettingsRepository) InvalidateCache() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = nil
	r.cacheValid = false
}

// loadLocked returns the cached document, reading and if necessary restoring
// it from disk first. Callers must hold r.mu.
func (r *FileGuildSettingsRepository) loadLocked() *models.DataStore {
	if r.cacheValid && r.cache != nil {
		return r.cache
	}

	data, err := r.readDocument(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Printf("store: failed to read %s: %v", r.path, err)
			if restored := r.restoreFromBackupLocked(); restored != nil {
				data = restored
			}
		}
	}
	if data == nil {
		data = models.NewDataStore()
	}
	if data.Guilds == nil {
		data.Guilds = make(map[string]models.GuildSettings)
	}

	r.cache = data
	r.cacheValid = true
	return data
}

// readDocument parses one store file.
func (r *FileGuildSettingsRepository) readDocument(path string) (*models.DataStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data models.DataStore
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse store document: %w", err)
	}
	return &data, nil
}

// restoreFromBackupLocked tries backups in slot order and adopts the first
// one that parses, copying it back over the primary file.
func (r *FileGuildSettingsRepository) restoreFromBackupLocked() *models.DataStore {
	for i := 1; i <= r.backupCount; i++ {
		backupPath := fmt.Sprintf("%s.backup.%d", r.path, i)
		data, err := r.readDocument(backupPath)
		if err != nil {
			if !os.IsNotExist(err) {
				r.logger.Printf("store: backup %d unreadable, trying next: %v", i, err)
			}
			continue
		}

		r.logger.Printf("store: restored from backup %d", i)
		if err := copyFile(backupPath, r.path); err != nil {
			r.logger.Printf("store: failed to restore primary from backup %d: %v", i, err)
		}
		return data
	}
	return nil
}

// rotateBackupsLocked shifts existing backups one slot up, dropping the
// oldest, then snapshots the current primary into slot 1. Rotation failures
// are logged but never block the write.
func (r *FileGuildSettingsRepository) rotateBackupsLocked() {
	if _, err := os.Stat(r.path); err != nil {
		return
	}

	oldest := fmt.Sprintf("%s.backup.%d", r.path, r.backupCount)
	if _, err := os.Stat(oldest); err == nil {
		if err := os.Remove(oldest); err != nil {
			r.logger.Printf("store: failed to drop oldest backup: %v", err)
		}
	}

	for i := r.backupCount - 1; i >= 1; i-- {
		oldBackup := fmt.Sprintf("%s.backup.%d", r.path, i)
		newBackup := fmt.Sprintf("%s.backup.%d", r.path, i+1)
		if _, err := os.Stat(oldBackup); err != nil {
			continue
		}
		if err := os.Rename(oldBackup, newBackup); err != nil {
			r.logger.Printf("store: failed to rotate backup %d: %v", i, err)
		}
	}

	if err := copyFile(r.path, r.path+".backup.1"); err != nil {
		r.logger.Printf("store: failed to create backup: %v", err)
	}
}

// saveLocked persists the full document and refreshes the cache. Backups
// rotate before the write. Callers must hold r.mu.
func (r *FileGuildSettingsRepository) saveLocked(data *models.DataStore) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	r.rotateBackupsLocked()

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store document: %w", err)
	}
	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		return fmt.Errorf("write store document: %w", err)
	}

	r.cache = data
	r.cacheValid = true
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
