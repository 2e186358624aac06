package console

import (
	"fmt"
	"sync"

	"github.com/docker/go-units"
)

// Progress returns a download progress callback that rewrites a single status
// line for label. Output is only refreshed when the whole percentage changes.
func (p *Printer) Progress(label string) func(completed, total int64) {
	var (
		mu   sync.Mutex
		last = -1
	)

	return func(completed, total int64) {
		mu.Lock()
		defer mu.Unlock()

		pct := -1
		if total > 0 {
			pct = int(completed * 100 / total)
		}
		if pct == last && pct >= 0 {
			return
		}
		last = pct

		var line string
		if total > 0 {
			line = fmt.Sprintf("\r%s%s %s / %s (%d%%)", prefix, label, units.HumanSize(float64(completed)), units.HumanSize(float64(total)), pct)
		} else {
			line = fmt.Sprintf("\r%s%s %s", prefix, label, units.HumanSize(float64(completed)))
		}

		p.mu.Lock()
		_, _ = fmt.Fprint(p.w, line)
		if total > 0 && completed >= total {
			_, _ = fmt.Fprintln(p.w)
		}
		p.mu.Unlock()
	}
}
