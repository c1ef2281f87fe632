package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sehyeong/promoworker/internal/model"
	"sehyeong/promoworker/pkg/errors"
)

const candidatesFile = "tag_candidates.json"

// FileStore persists per-retailer promotion databases as flat JSON files.
// Each retailer gets db_<store>.json for raw scrape output and
// db_<store>_with_tags.json once enrichment ran. Writes are atomic via a
// temp file and rename.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewStorage("store", fmt.Sprintf("데이터 디렉토리 생성 실패: %s", dir), err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory path.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) rawPath(storeID string) string {
	return filepath.Join(f.dir, "db_"+storeID+".json")
}

func (f *FileStore) taggedPath(storeID string) string {
	return filepath.Join(f.dir, "db_"+storeID+"_with_tags.json")
}

// SaveStore rewrites a retailer's raw promotion file.
func (f *FileStore) SaveStore(storeID string, items []model.PromotionItem) error {
	db := model.StoreDB{
		StoreName:   storeID,
		LastUpdated: time.Now().Format(time.RFC3339),
		TotalCount:  len(items),
		Items:       items,
	}
	return f.writeJSON(f.rawPath(storeID), db)
}

// SaveTagged rewrites a retailer's enriched promotion file.
func (f *FileStore) SaveTagged(storeID string, items []model.PromotionItem) error {
	db := model.StoreDB{
		StoreName:   storeID,
		LastUpdated: time.Now().Format(time.RFC3339),
		TotalCount:  len(items),
		Items:       items,
	}
	return f.writeJSON(f.taggedPath(storeID), db)
}

// LoadStore reads the raw promotion file for a retailer.
func (f *FileStore) LoadStore(storeID string) (model.StoreDB, error) {
	return f.readDB(f.rawPath(storeID), storeID)
}

// LoadTagged reads only the enriched file for a retailer. Errors when
// enrichment never ran.
func (f *FileStore) LoadTagged(storeID string) (model.StoreDB, error) {
	return f.readDB(f.taggedPath(storeID), storeID)
}

// LoadPreferTagged reads the enriched file when it exists, falling back to
// the raw one. Query tools always go through this.
func (f *FileStore) LoadPreferTagged(storeID string) (model.StoreDB, error) {
	if db, err := f.readDB(f.taggedPath(storeID), storeID); err == nil {
		return db, nil
	}
	return f.readDB(f.rawPath(storeID), storeID)
}

// SaveTagCandidates persists the allowed tag vocabulary.
func (f *FileStore) SaveTagCandidates(candidates model.TagCandidates) error {
	return f.writeJSON(filepath.Join(f.dir, candidatesFile), candidates)
}

// LoadTagCandidates reads the tag vocabulary. A missing file yields an empty
// set, not an error.
func (f *FileStore) LoadTagCandidates() (model.TagCandidates, error) {
	var candidates model.TagCandidates
	data, err := os.ReadFile(filepath.Join(f.dir, candidatesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return candidates, nil
		}
		return candidates, errors.NewStorage("store", "태그 후보 파일 읽기 실패", err)
	}
	if err := json.Unmarshal(data, &candidates); err != nil {
		return candidates, errors.NewStorage("store", "태그 후보 파일 파싱 실패", err)
	}
	return candidates, nil
}

func (f *FileStore) readDB(path, storeID string) (model.StoreDB, error) {
	var db model.StoreDB
	data, err := os.ReadFile(path)
	if err != nil {
		return db, errors.NewStorage(storeID, fmt.Sprintf("데이터 파일 읽기 실패: %s", path), err)
	}
	if err := json.Unmarshal(data, &db); err != nil {
		return db, errors.NewStorage(storeID, fmt.Sprintf("데이터 파일 파싱 실패: %s", path), err)
	}
	return db, nil
}

func (f *FileStore) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewStorage("store", "JSON 직렬화 실패", err)
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return errors.NewStorage("store", "임시 파일 생성 실패", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewStorage("store", "임시 파일 쓰기 실패", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewStorage("store", "임시 파일 닫기 실패", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.NewStorage("store", fmt.Sprintf("파일 교체 실패: %s", path), err)
	}
	return nil
}
