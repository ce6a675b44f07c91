package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

const (
	eventCount   = 1000
	logCount     = 500
	rulesPerHome = 10
	historyDays  = 30
)

// ErrNotEmpty is returned when the database already holds homes and Reset
// was not requested.
var ErrNotEmpty = errors.New("database already contains data")

// Options controls a seeding run.
type Options struct {
	// Reset deletes existing rows before seeding.
	Reset bool

	// Rand drives every random choice. Nil uses a time-seeded source.
	Rand *rand.Rand

	// Now anchors event and log timestamps. Nil uses time.Now.
	Now func() time.Time
}

// Summary counts the rows written by Run.
type Summary struct {
	Homes   int
	Users   int
	Rooms   int
	Devices int
	Sensors int
	Events  int
	Rules   int
	Logs    int
}

type account struct {
	email    string
	password string
	role     auth.Role
	home     int // index into homes
}

var (
	homes = []struct{ name, address string }{
		{"Lenin Street House", "10 Lenin St"},
		{"Red Street House", "25 Krasnaya St"},
		{"Apartment 3", "5 Pushkin St"},
		{"Company Office", "100 Sovetskaya St"},
		{"Country House", "15 Zarechye Village"},
	}

	accounts = []account{
		{"admin@example.com", "admin123", auth.RoleAdmin, 0},
		{"user1@example.com", "pass1", auth.RoleUser, 0},
		{"user2@example.com", "pass2", auth.RoleUser, 1},
		{"user3@example.com", "pass3", auth.RoleUser, 2},
		{"user4@example.com", "pass4", auth.RoleUser, 3},
		{"user5@example.com", "pass5", auth.RoleUser, 4},
	}

	roomNames = []string{"Living Room", "Bedroom", "Kitchen", "Bathroom", "Study", "Hallway"}

	deviceNames = []struct {
		typ   device.DeviceType
		names []string
	}{
		{device.TypeLight, []string{"Main Light", "Desk Lamp", "Accent Light", "Chandelier"}},
		{device.TypeThermostat, []string{"Thermostat 1", "Thermostat 2"}},
		{device.TypeCamera, []string{"Entrance Camera", "Living Room Camera", "Street Camera"}},
	}

	deviceStatuses = []string{"on", "off", "22°C", "idle"}
	eventTypes     = []string{"on", "off", "temperature_change", "motion_detected", "door_open", "door_close"}
	ruleConditions = []string{"temperature > 25", "motion_detected == true", "time == 22:00", "door_open == true", "humidity > 60"}
	ruleActions    = []string{"turn_off light", "set_temperature 22", "send_notification", "activate_alarm", "log_event"}
	logActions     = []string{
		"Created device", "Updated device status", "Created rule", "Deleted rule",
		"Viewed analytics", "Logged in", "Changed settings",
	}
)

// resetOrder deletes children before parents.
var resetOrder = []string{
	"logs", "home_events_summary", "events", "sensors", "rules", "devices", "rooms", "users", "homes",
}

// Run seeds db according to opts.
func Run(ctx context.Context, db *database.DB, opts Options) (Summary, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	hashes, err := hashPasswords(ctx)
	if err != nil {
		return Summary{}, err
	}

	s := &seeder{rng: rng, now: now().UTC()}
	err = db.WithTx(ctx, func(tx *database.Tx) error {
		if err := s.prepare(ctx, tx, opts.Reset); err != nil {
			return err
		}
		return s.populate(ctx, tx, hashes)
	})
	if err != nil {
		return Summary{}, err
	}
	return s.sum, nil
}

// hashPasswords hashes every account password concurrently.
func hashPasswords(ctx context.Context) ([]string, error) {
	hashes := make([]string, len(accounts))
	g, _ := errgroup.WithContext(ctx)
	for i, a := range accounts {
		g.Go(func() error {
			h, err := auth.HashPassword(a.password)
			if err != nil {
				return fmt.Errorf("hashing password for %s: %w", a.email, err)
			}
			hashes[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hashes, nil
}

type seeder struct {
	rng *rand.Rand
	now time.Time
	sum Summary

	homeIDs   []int64
	userIDs   []int64
	deviceIDs []int64
}

func (s *seeder) prepare(ctx context.Context, tx *database.Tx, reset bool) error {
	if reset {
		for _, table := range resetOrder {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		return nil
	}

	var n int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM homes").Scan(&n); err != nil {
		return fmt.Errorf("checking existing data: %w", err)
	}
	if n > 0 {
		return ErrNotEmpty
	}
	return nil
}

func (s *seeder) populate(ctx context.Context, tx *database.Tx, hashes []string) error {
	steps := []struct {
		name string
		fn   func(context.Context, *database.Tx) error
	}{
		{"homes", s.insertHomes},
		{"users", func(ctx context.Context, tx *database.Tx) error { return s.insertUsers(ctx, tx, hashes) }},
		{"rooms", s.insertRooms},
		{"devices", s.insertDevices},
		{"sensors", s.insertSensors},
		{"events", s.insertEvents},
		{"rules", s.insertRules},
		{"logs", s.insertLogs},
	}
	for _, step := range steps {
		if err := step.fn(ctx, tx); err != nil {
			return fmt.Errorf("seeding %s: %w", step.name, err)
		}
	}
	return nil
}

func insertID(ctx context.Context, tx *database.Tx, query string, args ...any) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, query, args...).Scan(&id)
	return id, err
}

func (s *seeder) insertHomes(ctx context.Context, tx *database.Tx) error {
	for _, h := range homes {
		id, err := insertID(ctx, tx, `INSERT INTO homes (name, address) VALUES (?, ?) RETURNING id`, h.name, h.address)
		if err != nil {
			return err
		}
		s.homeIDs = append(s.homeIDs, id)
	}
	s.sum.Homes = len(s.homeIDs)
	return nil
}

func (s *seeder) insertUsers(ctx context.Context, tx *database.Tx, hashes []string) error {
	for i, a := range accounts {
		id, err := insertID(ctx, tx,
			`INSERT INTO users (email, password_hash, role, home_id) VALUES (?, ?, ?, ?) RETURNING id`,
			a.email, hashes[i], string(a.role), s.homeIDs[a.home])
		if err != nil {
			return err
		}
		s.userIDs = append(s.userIDs, id)
	}
	s.sum.Users = len(s.userIDs)
	return nil
}

func (s *seeder) insertRooms(ctx context.Context, tx *database.Tx) error {
	for _, homeID := range s.homeIDs {
		for _, name := range roomNames {
			if _, err := tx.ExecContext(ctx, `INSERT INTO rooms (home_id, name) VALUES (?, ?)`, homeID, name); err != nil {
				return err
			}
			s.sum.Rooms++
		}
	}
	return nil
}

func (s *seeder) insertDevices(ctx context.Context, tx *database.Tx) error {
	for _, homeID := range s.homeIDs {
		for _, group := range deviceNames {
			for _, name := range group.names {
				id, err := insertID(ctx, tx,
					`INSERT INTO devices (home_id, type, name, status) VALUES (?, ?, ?, ?) RETURNING id`,
					homeID, string(group.typ), name, pick(s.rng, deviceStatuses))
				if err != nil {
					return err
				}
				s.deviceIDs = append(s.deviceIDs, id)
			}
		}
	}
	s.sum.Devices = len(s.deviceIDs)
	return nil
}

// insertSensors fits one sensor of every type to the first half of the devices.
func (s *seeder) insertSensors(ctx context.Context, tx *database.Tx) error {
	for _, deviceID := range s.deviceIDs[:len(s.deviceIDs)/2] {
		for _, typ := range device.AllSensorTypes() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sensors (device_id, type, value) VALUES (?, ?, ?)`,
				deviceID, string(typ), s.sensorValue(typ)); err != nil {
				return err
			}
			s.sum.Sensors++
		}
	}
	return nil
}

func (s *seeder) sensorValue(typ device.SensorType) string {
	switch typ {
	case device.SensorTemp:
		return fmt.Sprintf("%d°C", 15+s.rng.IntN(16))
	case device.SensorMotion:
		return pick(s.rng, []string{"detected", "clear"})
	default:
		return pick(s.rng, []string{"open", "closed"})
	}
}

func (s *seeder) insertEvents(ctx context.Context, tx *database.Tx) error {
	for range eventCount {
		typ := pick(s.rng, eventTypes)
		var value *string
		if typ == "temperature_change" {
			v := fmt.Sprintf("%d°C", 15+s.rng.IntN(16))
			value = &v
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (device_id, timestamp, event_type, value) VALUES (?, ?, ?, ?)`,
			pick(s.rng, s.deviceIDs), s.pastTime(), typ, value); err != nil {
			return err
		}
		s.sum.Events++
	}
	return nil
}

func (s *seeder) insertRules(ctx context.Context, tx *database.Tx) error {
	for _, homeID := range s.homeIDs {
		for range rulesPerHome {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO rules (home_id, condition, action) VALUES (?, ?, ?)`,
				homeID, pick(s.rng, ruleConditions), pick(s.rng, ruleActions)); err != nil {
				return err
			}
			s.sum.Rules++
		}
	}
	return nil
}

func (s *seeder) insertLogs(ctx context.Context, tx *database.Tx) error {
	for range logCount {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO logs (user_id, action, timestamp) VALUES (?, ?, ?)`,
			pick(s.rng, s.userIDs), pick(s.rng, logActions), s.pastTime()); err != nil {
			return err
		}
		s.sum.Logs++
	}
	return nil
}

// pastTime is up to historyDays days and 23 hours before now.
func (s *seeder) pastTime() time.Time {
	back := time.Duration(s.rng.IntN(historyDays+1))*24*time.Hour +
		time.Duration(s.rng.IntN(24))*time.Hour
	return s.now.Add(-back).Truncate(time.Microsecond)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
