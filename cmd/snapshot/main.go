// snapshot 把原始JSON数据转换为网络快照，写入本地目录或MongoDB
package main

import (
	"context"
	"flag"
	"time"

	"git.fiblab.net/sim/connectivity/network"
	"git.fiblab.net/sim/connectivity/store"
	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
)

var (
	inputDir   = flag.String("input", "data", "input dir of the raw json files")
	year       = flag.Int("year", 2022, "the year of the snapshot")
	historical = flag.Bool("historical", false, "skip decay tables and subpurpose lookup (historical years use the live ones)")
	outputPath = flag.String("output", "", "output [format: {dir} or {db}.{col}]")
	mongoURI   = flag.String("mongo_uri", "", "mongo db uri")
)

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	flag.Parse()

	start := time.Now()
	s, err := Convert(*inputDir, *year, !*historical)
	if err != nil {
		log.Fatalf("failed to convert %s: %v", *inputDir, err)
	}
	// 检查快照能否建立网络
	if _, err := network.New(s, *historical); err != nil {
		log.Fatalf("invalid snapshot: %v", err)
	}
	log.Infof("converted %d nodes of year %d, took %v", s.NodeCount(), s.Year, time.Since(start))

	if *outputPath == "" {
		log.Warn("no output given, dry run")
		return
	}
	w, closer, err := newWriter(*outputPath, *mongoURI)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closer()
	if err := w.Save(context.Background(), s); err != nil {
		log.Fatalf("failed to save snapshot to %s: %v", *outputPath, err)
	}
	log.Infof("snapshot of year %d saved to %s", s.Year, *outputPath)
}

// 输出到目录时目录可以尚不存在
func newWriter(output, mongoURI string) (store.Writer, func(), error) {
	path, err := store.NewPath(output)
	if err != nil {
		return store.NewFileStore(output), func() {}, nil
	}
	if path.IsFile() {
		return store.NewFileStore(path.Dir), func() {}, nil
	}
	client, err := store.NewMongoClient(context.Background(), mongoURI)
	if err != nil {
		return nil, nil, err
	}
	coll := client.Database(path.DB).Collection(path.Coll)
	return store.NewMongoStore(store.StaticCollection(coll)), func() { client.Disconnect(context.Background()) }, nil
}
