package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"stake-ledger/logger"
	"stake-ledger/types"
)

const dbName = "stake_ledger_"

type LDB struct {
	DB   *leveldb.DB
	lock sync.RWMutex
}

// NewLdb opens the database under the user's home directory, suffixed
// with tailFix so several ledgers can share a host.
func NewLdb(tailFix string) (*LDB, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return OpenLdb(filepath.Join(homeDir, "."+dbName+tailFix))
}

func OpenLdb(path string) (*LDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LDB{DB: db}, nil
}

// NewMemLdb returns a database kept in memory, lost on Close.
func NewMemLdb() (*LDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LDB{DB: db}, nil
}

func (l *LDB) Close() error {
	return l.DB.Close()
}

// Transaction runs fc under the write lock and writes everything it put
// into batch at once. Nothing is written when fc fails.
func (l *LDB) Transaction(fc func(l *LDB, batch *leveldb.Batch) error) error {
	batch := new(leveldb.Batch)
	l.lock.Lock()
	defer l.lock.Unlock()
	err := fc(l, batch)
	if err != nil {
		return err
	}

	return l.DB.Write(batch, nil)
}

// GetRecordByType loads the record stored under record.Key() into a new
// value of record's type. It returns nil when nothing is stored.
func (l *LDB) GetRecordByType(record types.DbRecord) (interface{}, error) {
	key := []byte(record.Key())
	data, err := l.DB.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	recordPtr := reflect.New(reflect.TypeOf(record).Elem()).Interface()
	err = json.Unmarshal(data, recordPtr)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %v", err)
	}

	return recordPtr, nil
}

// GetAllRecordsWithAutoId pages through the records sharing
// record.Prefix(), in ID order. total counts every record under the
// prefix.
func (l *LDB) GetAllRecordsWithAutoId(record types.DbRecordAutoId, limit, offset int, ascending bool) ([]interface{}, int, error) {
	if limit <= 0 {
		return nil, 0, fmt.Errorf("limit must be greater than 0")
	}
	if offset < 0 {
		return nil, 0, fmt.Errorf("offset cannot be negative")
	}

	var records []interface{}
	prefix := []byte(record.Prefix())

	l.lock.RLock()
	defer l.lock.RUnlock()

	iter := l.DB.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	total := 0
	for iter.Next() {
		total++
	}
	if err := iter.Error(); err != nil {
		logger.Logger.Errorf("iterator error during total count: %v", err)
		return nil, 0, err
	}

	move := iter.Next
	valid := iter.First
	if !ascending {
		move = iter.Prev
		valid = iter.Last
	}

	recordType := reflect.TypeOf(record).Elem()
	skipped := 0
	for ok := valid(); ok && len(records) < limit; ok = move() {
		if skipped < offset {
			skipped++
			continue
		}

		newRecord := reflect.New(recordType).Interface()
		if err := json.Unmarshal(iter.Value(), newRecord); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal record: %v", err)
		}
		records = append(records, newRecord)
	}

	if err := iter.Error(); err != nil {
		logger.Logger.Errorf("iterator error: %v", err)
		return nil, 0, err
	}
	return records, total, nil
}

func getNextID(db *leveldb.DB, recordType string) (uint64, error) {
	key := autoIncrementKey(recordType)

	data, err := db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return 1, nil
		}
		return 0, err
	}

	return BytesToUint64(data) + 1, nil
}

func autoIncrementKey(recordType string) string {
	return fmt.Sprintf("auto_increment_%s", recordType)
}

func storeRecordWithAutoID(db *leveldb.DB, batch *leveldb.Batch, record types.DbRecordAutoId) error {
	nextID, err := getNextID(db, record.Prefix())
	if err != nil {
		return err
	}

	record.SetId(nextID)

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	batch.Put([]byte(record.Key()), data)
	batch.Put([]byte(autoIncrementKey(record.Prefix())), Uint64ToBytes(nextID))
	return nil
}

// StoreRecord puts record into batch. Records with an auto ID get the
// next ID of their prefix. Only one auto ID record per prefix may go
// into a batch, since IDs are read from the committed state.
func StoreRecord(db *leveldb.DB, batch *leveldb.Batch, record types.DbRecord) error {
	if recordAuto, ok := record.(types.DbRecordAutoId); ok {
		return storeRecordWithAutoID(db, batch, recordAuto)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	batch.Put([]byte(record.Key()), data)
	return nil
}

func DeleteRecord(batch *leveldb.Batch, record types.DbRecord) {
	batch.Delete([]byte(record.Key()))
}
