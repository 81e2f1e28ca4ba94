package jobs

import (
	"context"
	"log"
	"time"
)

type DueProfitDistributor interface {
	DistributeDueProfits(ctx context.Context) (int, error)
}

// DistributeDueProfits picks up items whose one-shot job was lost, for
// example across a restart.
func DistributeDueProfits(d DueProfitDistributor, timeout time.Duration) func() {
	return func() {
		log.Println("Running job: DistributeDueProfits...")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n, err := d.DistributeDueProfits(ctx)
		if err != nil {
			log.Printf("🔥 Error distributing due profits: %v", err)
			return
		}
		if n > 0 {
			log.Printf("✅ Distributed profit for %d order item(s).", n)
		}
	}
}
