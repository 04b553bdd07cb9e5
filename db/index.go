package db

import "encoding/binary"

// LastID returns the highest auto ID handed out under prefix, 0 if none.
func (l *LDB) LastID(prefix string) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	id, err := getNextID(l.DB, prefix)
	if err != nil {
		return 0, err
	}
	return id - 1, nil
}

func Uint64ToBytes(i uint64) []byte {
	var buf = make([]byte, 8)
	binary.BigEndian.PutUint64(buf, i)
	return buf
}

func BytesToUint64(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf)
}
