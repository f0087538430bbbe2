package main

import (
	"context"
	"flag"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"git.fiblab.net/sim/connectivity/network"
	"git.fiblab.net/sim/connectivity/network/algo"
	"github.com/sirupsen/logrus"
)

var (
	benchmarkCount     = flag.Int("benchmark.count", 100, "the random floodfill request count for benchmark")
	benchmarkOrigins   = flag.Int("benchmark.origins", 100, "the origin count of each benchmark request")
	benchmarkTripStart = flag.Int("benchmark.trip_start", 8*3600, "the trip start seconds of benchmark requests")
	benchmarkSeed      = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
	benchmarkCPU       = flag.Int("benchmark.cpu", 1, "the concurrent request count for benchmark")
)

// 随机生成benchmarkCount个请求，每个请求有benchmarkOrigins个随机起点
// 网络为空时返回nil
func randomRequests(e *rand.Rand, nodeCount, count, origins int, tripStart int32) []*network.Request {
	if nodeCount <= 0 {
		return nil
	}
	reqs := make([]*network.Request, count)
	for i := range reqs {
		req := &network.Request{
			Origins:          make([]network.Origin, origins),
			TripStartSeconds: tripStart,
		}
		for j := range req.Origins {
			req.Origins[j] = network.Origin{
				Start:    algo.NodeID(e.Intn(nodeCount)),
				InitCost: algo.Cost(e.Intn(600)),
			}
		}
		reqs[i] = req
	}
	return reqs
}

func runBenchmark(engine *network.Engine) {
	log.Logger.SetLevel(logrus.WarnLevel)
	nodeCount := engine.NodeCount()
	if nodeCount == 0 {
		log.Fatalf("benchmark: network of year %d has no nodes", engine.Year())
	}
	e := rand.New(rand.NewSource(*benchmarkSeed))
	reqs := randomRequests(e, nodeCount, *benchmarkCount, *benchmarkOrigins, int32(*benchmarkTripStart))

	// 开始benchmark
	start := time.Now()
	var reached atomic.Int64
	var failed atomic.Int32
	run := func(req *network.Request) {
		res, err := engine.Run(context.Background(), req)
		if err != nil {
			log.Error("benchmark failed, err:", err)
			failed.Add(1)
			return
		}
		for _, r := range res {
			reached.Add(int64(r.ReachedCount))
		}
	}
	if *benchmarkCPU <= 1 {
		for _, req := range reqs {
			run(req)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, *benchmarkCPU)
		wg.Add(len(reqs))
		for _, req := range reqs {
			sem <- struct{}{}
			go func(req *network.Request) {
				defer wg.Done()
				defer func() { <-sem }()
				run(req)
			}(req)
		}
		wg.Wait()
	}
	timeCost := time.Since(start)
	origins := time.Duration(*benchmarkCount * *benchmarkOrigins)
	if origins == 0 {
		origins = 1
	}
	log.Warn(
		"benchmark finished", "\n",
		"requests:", *benchmarkCount, "\n",
		"origins per request:", *benchmarkOrigins, "\n",
		"time:", timeCost, "\n",
		"avg per origin:", timeCost/origins, "\n",
		"reached nodes:", reached.Load(), "\n",
		"failed:", failed.Load(), "\n",
	)
}
