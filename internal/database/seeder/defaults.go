package seeder

import "shiftmatch/internal/config"

func Defaults(cfg config.AppConfig) []Seeder {
	return []Seeder{
		DemoSeeder{WorkerID: cfg.DemoWorkerID, BusinessID: cfg.DemoBusinessID},
	}
}
