package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bizdash/core/cache"
	entity "bizdash/model/entity"
)

const cacheTTL = 5 * time.Minute

// Store reads and writes typed settings rows keyed by (category, key).
// Reads go through the cache; every write invalidates the cached entries of its category.
type Store struct {
	db    *gorm.DB
	cache *cache.Cache
	now   func() time.Time
}

// NewStore returns a Store. c may be nil, in which case reads always hit the database.
func NewStore(db *gorm.DB, c *cache.Cache) *Store {
	return &Store{db: db, cache: c, now: time.Now}
}

func cacheKey(category, key string) string {
	return "settings:" + category + ":" + key
}

// lookup is the cached shape of a single row; found=false caches a miss.
type lookup struct {
	found bool
	row   entity.Setting
}

// Get returns the decoded value of category/key, or def when the row does not exist.
// A json value that fails to decode is returned as an empty object.
func (s *Store) Get(ctx context.Context, category, key string, def interface{}) (interface{}, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey(category, key)); ok {
			if l, ok := v.(lookup); ok {
				if !l.found {
					return def, nil
				}
				return Decode(l.row.Value, l.row.Type), nil
			}
		}
	}
	row, found, err := s.fetch(ctx, category, key)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(cacheKey(category, key), lookup{found: found, row: row}, cacheTTL)
	}
	if !found {
		return def, nil
	}
	return Decode(row.Value, row.Type), nil
}

// GetFresh is Get without the cache.
func (s *Store) GetFresh(ctx context.Context, category, key string, def interface{}) (interface{}, error) {
	row, found, err := s.fetch(ctx, category, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return def, nil
	}
	return Decode(row.Value, row.Type), nil
}

func (s *Store) fetch(ctx context.Context, category, key string) (entity.Setting, bool, error) {
	var rows []entity.Setting
	err := s.db.WithContext(ctx).
		Where("category = ? AND setting_key = ?", category, key).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return entity.Setting{}, false, fmt.Errorf("read setting %s/%s: %w", category, key, err)
	}
	if len(rows) == 0 {
		return entity.Setting{}, false, nil
	}
	return rows[0], true, nil
}

// GetString returns the setting rendered as a string, or def when absent.
func (s *Store) GetString(ctx context.Context, category, key, def string) (string, error) {
	v, err := s.Get(ctx, category, key, def)
	if err != nil {
		return def, err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return def, nil
		}
		return string(b), nil
	}
}

// GetBool returns true for a boolean true value or the string "true".
func (s *Store) GetBool(ctx context.Context, category, key string, def bool) (bool, error) {
	v, err := s.Get(ctx, category, key, def)
	if err != nil {
		return def, err
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return t == "true", nil
	default:
		return def, nil
	}
}

// Set serializes value according to typ and upserts the row, bumping updated_at.
// typ is not validated; unknown types are stored as strings.
func (s *Store) Set(ctx context.Context, category, key string, value interface{}, typ string) error {
	if typ == "" {
		typ = entity.SettingTypeString
	}
	str, err := Encode(value, typ)
	if err != nil {
		return fmt.Errorf("encode setting %s/%s: %w", category, key, err)
	}
	row := entity.Setting{
		Category:  category,
		Key:       key,
		Value:     str,
		Type:      typ,
		UpdatedAt: s.now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}, {Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "type", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write setting %s/%s: %w", category, key, err)
	}
	s.invalidate(category)
	return nil
}

func (s *Store) invalidate(category string) {
	if s.cache == nil {
		return
	}
	_, _ = s.cache.DeletePattern("^" + regexp.QuoteMeta("settings:"+category+":"))
}

// GetCategory returns every key of a category, decoded.
func (s *Store) GetCategory(ctx context.Context, category string) (map[string]interface{}, error) {
	var rows []entity.Setting
	if err := s.db.WithContext(ctx).Where("category = ?", category).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read settings category %s: %w", category, err)
	}
	out := make(map[string]interface{}, len(rows))
	for _, r := range rows {
		out[r.Key] = Decode(r.Value, r.Type)
	}
	return out, nil
}

// Rows returns the raw rows of a category ordered by key.
func (s *Store) Rows(ctx context.Context, category string) ([]entity.Setting, error) {
	var rows []entity.Setting
	if err := s.db.WithContext(ctx).Where("category = ?", category).Order("setting_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read settings category %s: %w", category, err)
	}
	return rows, nil
}

// GetAll returns all settings grouped by category.
func (s *Store) GetAll(ctx context.Context) (map[string]map[string]interface{}, error) {
	var rows []entity.Setting
	if err := s.db.WithContext(ctx).Order("category, setting_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	out := make(map[string]map[string]interface{})
	for _, r := range rows {
		if out[r.Category] == nil {
			out[r.Category] = make(map[string]interface{})
		}
		out[r.Category][r.Key] = Decode(r.Value, r.Type)
	}
	return out, nil
}

// Decode converts a stored text value to its typed form.
func Decode(value, typ string) interface{} {
	switch typ {
	case entity.SettingTypeBoolean:
		return value == "true"
	case entity.SettingTypeJSON:
		var v interface{}
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return map[string]interface{}{}
		}
		return v
	default:
		return value
	}
}

// Encode converts value to its stored text form.
func Encode(value interface{}, typ string) (string, error) {
	switch typ {
	case entity.SettingTypeBoolean:
		return strconv.FormatBool(truthy(value)), nil
	case entity.SettingTypeJSON:
		b, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		if value == nil {
			return "", nil
		}
		return fmt.Sprint(value), nil
	}
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
