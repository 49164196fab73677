package ids

import (
	"strconv"
	"sync"
	"time"
)

// Connection ids are snowflakes: 41 bits of milliseconds since gatewayEpoch,
// then the gateway node, then a per-millisecond sequence. Within one node they
// sort by creation time.
const (
	nodeBits = 10
	seqBits  = 12

	MaxNodeID = 1<<nodeBits - 1
	seqMask   = 1<<seqBits - 1

	NodeShift = seqBits
	tsShift   = nodeBits + seqBits
	tsMask    = 1<<41 - 1
)

var gatewayEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

type generator struct {
	mu     sync.Mutex
	nodeID int64
	seq    int64
	lastMS int64
}

var (
	defaultGen *generator
	once       sync.Once
)

func initDefault() {
	once.Do(func() {
		defaultGen = &generator{nodeID: 1}
	})
}

// Generate returns a new id.
func Generate() int64 {
	initDefault()
	return defaultGen.next()
}

func GenerateString() string {
	return strconv.FormatInt(Generate(), 10)
}

// SetNodeID sets the node part (0~MaxNodeID); call once from main during boot.
// Out-of-range values fall back to node 1.
func SetNodeID(nodeID int64) {
	initDefault()
	if nodeID < 0 || nodeID > MaxNodeID {
		nodeID = 1
	}
	defaultGen.nodeID = nodeID
}

func (g *generator) next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		now := time.Now().UnixMilli()
		if now < g.lastMS {
			// clock moved backwards, wait it out
			time.Sleep(time.Duration(g.lastMS-now) * time.Millisecond)
			continue
		}
		if now == g.lastMS {
			g.seq = (g.seq + 1) & seqMask
			if g.seq == 0 {
				// sequence overflow, spin to the next millisecond
				for now <= g.lastMS {
					now = time.Now().UnixMilli()
				}
			}
		} else {
			g.seq = 0
		}
		g.lastMS = now

		ts := (now - gatewayEpoch) & tsMask
		return ts<<tsShift | g.nodeID<<NodeShift | g.seq
	}
}
