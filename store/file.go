package store

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
)

// 单条bson文档的长度上限（MongoDB的16MB限制）
const MAX_DOCUMENT_SIZE = 16 * 1024 * 1024

// FileStore 目录下每个年份一个{year}.bson文件，内容为依次拼接的Record文档
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) PathOf(year int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%d.bson", year))
}

func (s *FileStore) Has(year int) bool {
	_, err := os.Stat(s.PathOf(year))
	return err == nil
}

func (s *FileStore) Load(ctx context.Context, year int) (*Snapshot, error) {
	path := s.PathOf(year)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()
	a := newAssembler(year)
	r := bufio.NewReaderSize(f, 1<<20)
	for count := 0; ; count++ {
		if count%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		doc, err := readDocument(r)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var rec Record
		if err := bson.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if err := a.add(rec); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return a.finish()
}

// Save 写入临时文件后改名，避免读到写了一半的快照
func (s *FileStore) Save(ctx context.Context, snapshot *Snapshot) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	path := s.PathOf(snapshot.Year)
	tmp, err := os.CreateTemp(s.Dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	w := bufio.NewWriterSize(tmp, 1<<20)
	for _, rec := range snapshot.Records() {
		doc, err := bson.Marshal(rec)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("encode node %d: %w", rec.Node, err)
		}
		if _, err := w.Write(doc); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// 读取一条以4字节小端长度开头的bson文档
func readDocument(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("truncated document header: %w", err)
		}
		return nil, err
	}
	size := binary.LittleEndian.Uint32(header[:])
	if size < 5 || size > MAX_DOCUMENT_SIZE {
		return nil, fmt.Errorf("invalid document size %d", size)
	}
	doc := make([]byte, size)
	copy(doc, header[:])
	if _, err := io.ReadFull(r, doc[4:]); err != nil {
		return nil, fmt.Errorf("truncated document: %w", err)
	}
	return doc, nil
}
