// Package repository persists computed simulation runs in Postgres as
// operator-facing history. Writes are best-effort from the service's point
// of view; reads back the most recent runs first.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/terminal-bench/cabletherm/internal/models"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS simulation_runs (
	id UUID PRIMARY KEY,
	kind TEXT NOT NULL,
	ambient_temperature DOUBLE PRECISION NOT NULL,
	wind_speed DOUBLE PRECISION NOT NULL,
	current_intensity DOUBLE PRECISION NOT NULL,
	initial_cable_temperature DOUBLE PRECISION NOT NULL,
	simulation_duration DOUBLE PRECISION NOT NULL,
	time_step DOUBLE PRECISION NOT NULL,
	intervals INTEGER NOT NULL,
	final_temperature DOUBLE PRECISION NOT NULL,
	energy_used DOUBLE PRECISION NOT NULL,
	co2_emissions DOUBLE PRECISION NOT NULL,
	execution_time DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// RunRepository handles simulation-run database operations.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository connects to Postgres at databaseURL and ensures the
// schema exists.
func NewRunRepository(databaseURL string) (*RunRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(createRunsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &RunRepository{db: db}, nil
}

// Close closes the database connection.
func (r *RunRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun inserts one run record, filling in id and timestamp when absent.
func (r *RunRepository) SaveRun(ctx context.Context, run *models.SimulationRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO simulation_runs (id, kind, ambient_temperature, wind_speed, current_intensity,
		 initial_cable_temperature, simulation_duration, time_step, intervals,
		 final_temperature, energy_used, co2_emissions, execution_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		run.ID, run.Kind, run.AmbientTemperature, run.WindSpeed, run.CurrentIntensity,
		run.InitialCableTemperature, run.Duration, run.TimeStep, run.Intervals,
		run.FinalTemperature, run.EnergyUsed, run.CO2Emissions, run.ExecutionTime, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert simulation run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]models.SimulationRun, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, ambient_temperature, wind_speed, current_intensity,
		 initial_cable_temperature, simulation_duration, time_step, intervals,
		 final_temperature, energy_used, co2_emissions, execution_time, created_at
		 FROM simulation_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulation runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SimulationRun
	for rows.Next() {
		var run models.SimulationRun
		if err := rows.Scan(&run.ID, &run.Kind, &run.AmbientTemperature, &run.WindSpeed,
			&run.CurrentIntensity, &run.InitialCableTemperature, &run.Duration, &run.TimeStep,
			&run.Intervals, &run.FinalTemperature, &run.EnergyUsed, &run.CO2Emissions,
			&run.ExecutionTime, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan simulation run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate simulation runs: %w", err)
	}
	return runs, nil
}
