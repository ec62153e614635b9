package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_status') THEN
			CREATE TYPE vehicle_status AS ENUM ('AVAILABLE', 'ON_TRIP', 'IN_SHOP', 'RETIRED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_type') THEN
			CREATE TYPE vehicle_type AS ENUM ('TRUCK', 'VAN', 'BIKE');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'driver_status') THEN
			CREATE TYPE driver_status AS ENUM ('ON_DUTY', 'OFF_DUTY', 'ON_TRIP', 'SUSPENDED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'trip_status') THEN
			CREATE TYPE trip_status AS ENUM ('DRAFT', 'DISPATCHED', 'COMPLETED', 'CANCELLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'maintenance_status') THEN
			CREATE TYPE maintenance_status AS ENUM ('OPEN', 'IN_PROGRESS', 'RESOLVED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(128) NOT NULL,
		model VARCHAR(128),
		license_plate VARCHAR(32) NOT NULL,
		vehicle_type vehicle_type NOT NULL,
		max_capacity DOUBLE PRECISION NOT NULL CHECK (max_capacity > 0),
		odometer DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (odometer >= 0),
		acquisition_cost DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (acquisition_cost >= 0),
		status vehicle_status NOT NULL DEFAULT 'AVAILABLE',
		region VARCHAR(64) NOT NULL DEFAULT 'Default',
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT vehicles_license_plate_key UNIQUE (license_plate)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_status ON vehicles (status);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_type_region ON vehicles (vehicle_type, region);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name VARCHAR(255) NOT NULL,
		license_number VARCHAR(64) NOT NULL,
		license_expiry DATE NOT NULL,
		phone VARCHAR(32),
		status driver_status NOT NULL DEFAULT 'ON_DUTY',
		safety_score DOUBLE PRECISION NOT NULL DEFAULT 100 CHECK (safety_score BETWEEN 0 AND 100),
		complaints INTEGER NOT NULL DEFAULT 0 CHECK (complaints >= 0),
		completed_trips INTEGER NOT NULL DEFAULT 0,
		cancelled_trips INTEGER NOT NULL DEFAULT 0,
		total_trips INTEGER NOT NULL DEFAULT 0,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT drivers_license_number_key UNIQUE (license_number)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_status ON drivers (status);`,
	`CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL,
		driver_id UUID NOT NULL,
		cargo_weight DOUBLE PRECISION NOT NULL CHECK (cargo_weight > 0),
		origin VARCHAR(255) NOT NULL,
		destination VARCHAR(255) NOT NULL,
		distance DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (distance >= 0),
		estimated_fuel_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		revenue DOUBLE PRECISION NOT NULL DEFAULT 0,
		status trip_status NOT NULL DEFAULT 'DRAFT',
		scheduled_date DATE NOT NULL DEFAULT CURRENT_DATE,
		dispatched_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		created_by UUID,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT trips_vehicle_id_fkey FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE RESTRICT,
		CONSTRAINT trips_driver_id_fkey FOREIGN KEY (driver_id) REFERENCES drivers(id) ON DELETE RESTRICT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_vehicle_id ON trips (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_driver_id ON trips (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_status ON trips (status);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_trips_dispatched_vehicle
		ON trips (vehicle_id)
		WHERE status = 'DISPATCHED';`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_trips_dispatched_driver
		ON trips (driver_id)
		WHERE status = 'DISPATCHED';`,
	`CREATE TABLE IF NOT EXISTS maintenance_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL,
		issue VARCHAR(255) NOT NULL,
		description TEXT,
		date DATE NOT NULL DEFAULT CURRENT_DATE,
		cost DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (cost >= 0),
		status maintenance_status NOT NULL DEFAULT 'OPEN',
		resolved_at TIMESTAMPTZ,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT maintenance_logs_vehicle_id_fkey FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE RESTRICT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_logs_vehicle_status ON maintenance_logs (vehicle_id, status);`,
	`CREATE TABLE IF NOT EXISTS fuel_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL,
		trip_id UUID,
		date DATE NOT NULL DEFAULT CURRENT_DATE,
		liters DOUBLE PRECISION NOT NULL CHECK (liters > 0),
		cost DOUBLE PRECISION NOT NULL CHECK (cost > 0),
		odometer_reading DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT fuel_logs_vehicle_id_fkey FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE RESTRICT,
		CONSTRAINT fuel_logs_trip_id_fkey FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE RESTRICT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_fuel_logs_vehicle_date ON fuel_logs (vehicle_id, date);`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL,
		trip_id UUID,
		category VARCHAR(64) NOT NULL,
		description TEXT,
		amount DOUBLE PRECISION NOT NULL CHECK (amount > 0),
		date DATE NOT NULL DEFAULT CURRENT_DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT expenses_vehicle_id_fkey FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE RESTRICT,
		CONSTRAINT expenses_trip_id_fkey FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE RESTRICT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_vehicle_date ON expenses (vehicle_id, date);`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		actor_id UUID,
		action VARCHAR(64) NOT NULL,
		entity_type VARCHAR(32) NOT NULL,
		entity_id UUID NOT NULL,
		old_status VARCHAR(32),
		new_status VARCHAR(32),
		details JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at DESC);`,
	`CREATE OR REPLACE FUNCTION trg_touch_updated_at() RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	DECLARE
		t TEXT;
	BEGIN
		FOREACH t IN ARRAY ARRAY['vehicles', 'drivers', 'trips', 'maintenance_logs'] LOOP
			IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_' || t || '_updated_at') THEN
				EXECUTE format(
					'CREATE TRIGGER %I BEFORE UPDATE ON %I FOR EACH ROW EXECUTE PROCEDURE trg_touch_updated_at()',
					'trg_' || t || '_updated_at', t
				);
			END IF;
		END LOOP;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
