package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// Path 快照位置：本地目录或MongoDB的{db}.{col}
type Path struct {
	Dir  string
	DB   string
	Coll string
}

func NewPath(dirOrColl string) (*Path, error) {
	// 检查dirOrColl是否作为目录存在
	if info, err := os.Stat(dirOrColl); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("snapshot path is not a directory: %s", dirOrColl)
		}
		return &Path{
			Dir: dirOrColl,
		}, nil
	}
	dbDotColl := strings.TrimSpace(dirOrColl)
	if dbDotColl == "" {
		return nil, fmt.Errorf("empty snapshot path")
	}
	splitted := strings.Split(dbDotColl, ".")
	if len(splitted) != 2 || splitted[0] == "" || splitted[1] == "" {
		return nil, fmt.Errorf("dbDotColl is invalid: %s", dbDotColl)
	}
	return &Path{
		DB:   splitted[0],
		Coll: splitted[1],
	}, nil
}

func (p *Path) IsFile() bool {
	return p.Dir != ""
}

func (p *Path) String() string {
	if p.IsFile() {
		return p.Dir
	}
	return p.DB + "." + p.Coll
}

// Open 按路径打开快照源，返回的close函数用于断开可能建立的数据库连接
func Open(p *Path, mongoURI string, cacheDir string) (Store, func(), error) {
	if p.IsFile() {
		return NewFileStore(p.Dir), func() {}, nil
	}
	if mongoURI == "" {
		return nil, nil, fmt.Errorf("mongo_uri is required to read %s", p)
	}
	lazy := &lazyClient{dial: func(ctx context.Context) (*mongo.Client, error) {
		return NewMongoClient(ctx, mongoURI)
	}}
	lazyColl := func() (*mongo.Collection, error) {
		client, err := lazy.Get(context.Background())
		if err != nil {
			return nil, err
		}
		return client.Database(p.DB).Collection(p.Coll), nil
	}
	return WithCache(NewMongoStore(lazyColl), cacheDir), lazy.Close, nil
}

// lazyClient 首次使用时才连接数据库，连接失败时下次重试
type lazyClient struct {
	dial   func(ctx context.Context) (*mongo.Client, error)
	mu     sync.Mutex
	client *mongo.Client
}

func (l *lazyClient) Get(ctx context.Context) (*mongo.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.client == nil {
		c, err := l.dial(ctx)
		if err != nil {
			return nil, err
		}
		l.client = c
	}
	return l.client, nil
}

func (l *lazyClient) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.client != nil {
		l.client.Disconnect(context.Background())
		l.client = nil
	}
}
