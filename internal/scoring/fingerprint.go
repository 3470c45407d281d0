package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/types"
)

// Fingerprint identifies a scoring request for caching: the content, the tier and
// every context field that changes pillar output, including benchmark vectors and
// a pinned clock. Empty vectors and a zero clock add nothing to the hash.
func Fingerprint(content string, tier types.Tier, pc *pillars.Context) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	vector := func(v []float64) {
		write(strconv.Itoa(len(v)))
		for _, f := range v {
			write(strconv.FormatFloat(f, 'g', -1, 64))
		}
	}
	write(content)
	write(string(tier))
	if pc != nil {
		write(pc.URL)
		write(pc.Entity)
		write(pc.CorpusID)
		if len(pc.Embedding) > 0 || len(pc.Neighbors) > 0 {
			write("vectors")
			vector(pc.Embedding)
			write(strconv.Itoa(len(pc.Neighbors)))
			for _, n := range pc.Neighbors {
				vector(n)
			}
		}
		if !pc.Now.IsZero() {
			write("now")
			write(pc.Now.UTC().Format(time.RFC3339Nano))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
