package seeder

import (
	"context"
	"time"

	"shiftmatch/internal/database"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// DemoSeeder creates the demo business with one branch, the demo worker and
// a handful of open shifts over the next days. Re-running it is a no-op for
// rows that already exist.
type DemoSeeder struct {
	WorkerID   uuid.UUID
	BusinessID uuid.UUID
	Now        func() time.Time
}

var (
	DemoBranchID = uuid.MustParse("00000000-0000-0000-0000-0000000b0001")

	demoBranchLat, demoBranchLng = 10.7769, 106.7009
)

type demoShift struct {
	id     uuid.UUID
	title  string
	day    int
	start  int
	hours  int
	rate   float64
	skills []string
}

var demoShifts = []demoShift{
	{uuid.MustParse("00000000-0000-0000-0000-00000000f001"), "Morning barista", 1, 7, 4, 35000, []string{"barista"}},
	{uuid.MustParse("00000000-0000-0000-0000-00000000f002"), "Lunch server", 1, 12, 4, 30000, []string{"server", "cashier"}},
	{uuid.MustParse("00000000-0000-0000-0000-00000000f003"), "Evening kitchen helper", 2, 17, 5, 32000, []string{"kitchen"}},
}

func (DemoSeeder) Name() string { return "demo" }

func (s DemoSeeder) Run(ctx context.Context, db database.DB) error {
	if s.WorkerID == uuid.Nil || s.BusinessID == uuid.Nil {
		return errors.New("demo ids not configured")
	}
	if err := EnsureTableColumns(ctx, db, "jobs", "id", "business_id", "branch_id", "total_amount", "max_workers"); err != nil {
		return err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today := now().UTC().Truncate(24 * time.Hour)

	return database.InTx(ctx, db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO businesses (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			s.BusinessID, "Demo Coffee Co.",
		); err != nil {
			return errors.Wrap(err, "business")
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO branches (id, business_id, name, address, latitude, longitude)
			 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			DemoBranchID, s.BusinessID, "District 1", "1 Nguyen Hue", demoBranchLat, demoBranchLng,
		); err != nil {
			return errors.Wrap(err, "branch")
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO workers (id, name, latitude, longitude, rating) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			s.WorkerID, "Demo Worker", demoBranchLat+0.01, demoBranchLng, 4.5,
		); err != nil {
			return errors.Wrap(err, "worker")
		}
		for _, skill := range []string{"barista", "server"} {
			if _, err := tx.Exec(ctx,
				`INSERT INTO worker_skills (worker_id, skill) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				s.WorkerID, skill,
			); err != nil {
				return errors.Wrap(err, "worker skill")
			}
		}

		for _, sh := range demoShifts {
			start := today.AddDate(0, 0, sh.day).Add(time.Duration(sh.start) * time.Hour)
			end := start.Add(time.Duration(sh.hours) * time.Hour)
			n, err := tx.Exec(ctx,
				`INSERT INTO jobs (id, business_id, branch_id, title, start_time, end_time, hourly_rate, total_amount, max_workers, status)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, 'OPEN') ON CONFLICT (id) DO NOTHING`,
				sh.id, s.BusinessID, DemoBranchID, sh.title, start, end, sh.rate, sh.rate*float64(sh.hours),
			)
			if err != nil {
				return errors.Wrapf(err, "job %s", sh.title)
			}
			if n == 0 {
				continue
			}
			for _, skill := range sh.skills {
				if _, err := tx.Exec(ctx,
					`INSERT INTO job_skills (job_id, skill) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
					sh.id, skill,
				); err != nil {
					return errors.Wrap(err, "job skill")
				}
			}
		}
		return nil
	})
}
