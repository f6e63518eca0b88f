// ===== internal/mac/database.go =====
package mac

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"wifigaze/pkg/models"
	"wifigaze/pkg/utils"
)

var (
	unknownEntry = models.OUIEntry{
		OUI:     "00:00:00",
		Company: "UNKNOWN",
		Address: "UNKNOWN",
	}
	privateEntry = models.OUIEntry{
		Private: true,
		Company: "Local/Privacy MAC",
		Address: "UNKNOWN",
	}
)

// Database handles MAC address OUI lookups
type Database struct {
	filename string
	cache    map[string]*models.OUIEntry
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewDatabase creates a MAC database and loads filename when it is set
func NewDatabase(filename string, logger *zap.Logger) (*Database, error) {
	db := &Database{
		filename: filename,
		cache:    make(map[string]*models.OUIEntry),
		logger:   logger,
	}

	if filename == "" {
		return db, nil
	}
	if err := db.Reload(); err != nil {
		return nil, err
	}
	return db, nil
}

// Filename returns the file the database was loaded from
func (db *Database) Filename() string {
	return db.filename
}

// Reload replaces the cache with the file's current content. A file with no
// readable entries leaves an already loaded cache in place.
func (db *Database) Reload() error {
	file, err := os.Open(db.filename)
	if err != nil {
		return fmt.Errorf("failed to open MAC database: %w", err)
	}
	defer file.Close()

	cache, err := load(file, db.logger)
	if err != nil {
		return fmt.Errorf("failed to read MAC database: %w", err)
	}

	db.mu.Lock()
	if len(cache) == 0 && len(db.cache) > 0 {
		// a writer truncates before refilling; the next event brings the content
		kept := len(db.cache)
		db.mu.Unlock()
		db.logger.Debug("ignoring empty MAC database", zap.String("file", db.filename), zap.Int("kept", kept))
		return nil
	}
	db.cache = cache
	db.mu.Unlock()

	db.logger.Info("loaded MAC database", zap.String("file", db.filename), zap.Int("entries", len(cache)))
	return nil
}

// load reads one JSON OUI entry per line
func load(r io.Reader, logger *zap.Logger) (map[string]*models.OUIEntry, error) {
	cache := make(map[string]*models.OUIEntry)
	scanner := bufio.NewScanner(r)

	skipped := 0
	for scanner.Scan() {
		if len(strings.TrimSpace(scanner.Text())) == 0 {
			continue
		}

		var entry models.OUIEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil || entry.OUI == "" {
			skipped++
			continue
		}

		prefix := strings.ToUpper(entry.OUI)
		cache[prefix] = &entry
	}

	if skipped > 0 {
		logger.Warn("skipped unreadable MAC database lines", zap.Int("count", skipped))
	}
	return cache, scanner.Err()
}

// Len returns the number of loaded prefixes
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.cache)
}

// Lookup finds OUI information for a MAC address, preferring the longest
// known prefix. Unlisted locally administered addresses report as private.
func (db *Database) Lookup(mac string) models.OUIEntry {
	mac = strings.ToUpper(utils.NormalizeMAC(mac))

	db.mu.RLock()
	for i := len(mac); i > 0; i-- {
		if entry, exists := db.cache[mac[:i]]; exists {
			db.mu.RUnlock()
			return *entry
		}
	}
	db.mu.RUnlock()

	if hw, err := net.ParseMAC(mac); err == nil && utils.IsPrivateMAC(hw) {
		return privateEntry
	}
	return unknownEntry
}
