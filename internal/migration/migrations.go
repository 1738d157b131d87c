package migration

// getAllMigrations returns the built-in migration set
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_resource_roles",
			Up: `
				CREATE TABLE IF NOT EXISTS resource_roles (
					id SERIAL PRIMARY KEY,
					company_id TEXT,
					type TEXT NOT NULL CHECK (type IN ('default', 'custom')),
					name TEXT NOT NULL,
					label TEXT NOT NULL,
					hourly_rate NUMERIC(12,2) NOT NULL CHECK (hourly_rate > 0),
					default_hourly_rate NUMERIC(12,2) NOT NULL,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE UNIQUE INDEX idx_resource_roles_default_name
					ON resource_roles (name) WHERE type = 'default' AND is_active;

				CREATE UNIQUE INDEX idx_resource_roles_custom_name
					ON resource_roles (company_id, name) WHERE type = 'custom' AND is_active;
			`,
			Down: `DROP TABLE IF EXISTS resource_roles;`,
		},
		{
			Version: 2,
			Name:    "create_resource_rate_history",
			Up: `
				CREATE TABLE IF NOT EXISTS resource_rate_history (
					id SERIAL PRIMARY KEY,
					role_id INTEGER NOT NULL REFERENCES resource_roles(id),
					role_name TEXT NOT NULL,
					role_label TEXT NOT NULL,
					action TEXT NOT NULL,
					old_rate NUMERIC(12,2) NOT NULL,
					new_rate NUMERIC(12,2) NOT NULL,
					change_percent NUMERIC(8,2),
					company_id TEXT,
					changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_rate_history_role ON resource_rate_history (role_id);
				CREATE INDEX idx_rate_history_company ON resource_rate_history (company_id);
			`,
			Down: `DROP TABLE IF EXISTS resource_rate_history;`,
		},
		{
			Version: 3,
			Name:    "create_estimation_settings",
			Up: `
				CREATE TABLE IF NOT EXISTS estimation_settings (
					id SERIAL PRIMARY KEY,
					company_id TEXT NOT NULL UNIQUE,
					complexity_multipliers JSONB NOT NULL
						DEFAULT '{"low": 1.0, "medium": 1.3, "high": 1.6, "extreme": 2.0}',
					productivity_factor NUMERIC(4,2) NOT NULL DEFAULT 0.85
						CHECK (productivity_factor > 0 AND productivity_factor <= 1),
					working_hours_per_day INTEGER NOT NULL DEFAULT 8 CHECK (working_hours_per_day > 0),
					working_days_per_week INTEGER NOT NULL DEFAULT 5 CHECK (working_days_per_week > 0),
					sprint_duration_weeks INTEGER NOT NULL DEFAULT 2 CHECK (sprint_duration_weeks > 0),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
			Down: `DROP TABLE IF EXISTS estimation_settings;`,
		},
		{
			Version: 4,
			Name:    "create_projects",
			Up: `
				CREATE TABLE IF NOT EXISTS projects (
					id TEXT PRIMARY KEY,
					company_id TEXT NOT NULL,
					name TEXT NOT NULL,
					client_name TEXT NOT NULL,
					name_normalized TEXT NOT NULL,
					client_name_normalized TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					estimation_technique TEXT NOT NULL,
					target_margin NUMERIC(8,2) NOT NULL DEFAULT 0,
					risk_buffer NUMERIC(8,2) NOT NULL DEFAULT 0,
					negotiation_buffer NUMERIC(8,2) NOT NULL DEFAULT 0,
					estimated_team_size INTEGER NOT NULL CHECK (estimated_team_size > 0),
					status TEXT NOT NULL DEFAULT 'DRAFT',
					estimate JSONB,
					created_by TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE UNIQUE INDEX idx_projects_company_name
					ON projects (company_id, name_normalized, client_name_normalized);

				CREATE INDEX idx_projects_company_created
					ON projects (company_id, created_at DESC);
			`,
			Down: `DROP TABLE IF EXISTS projects;`,
		},
		{
			Version: 5,
			Name:    "seed_default_roles",
			Up: `
				INSERT INTO resource_roles (type, name, label, hourly_rate, default_hourly_rate)
				VALUES
					('default', 'backenddeveloper', 'Backend Developer', 55, 55),
					('default', 'frontenddeveloper', 'Frontend Developer', 50, 50),
					('default', 'fullstackdeveloper', 'Fullstack Developer', 60, 60),
					('default', 'uiuxdesigner', 'UI/UX Designer', 45, 45),
					('default', 'qaengineer', 'QA Engineer', 40, 40),
					('default', 'devopsengineer', 'DevOps Engineer', 65, 65),
					('default', 'projectmanager', 'Project Manager', 70, 70),
					('default', 'businessanalyst', 'Business Analyst', 55, 55)
				ON CONFLICT DO NOTHING;
			`,
			Down: `DELETE FROM resource_roles WHERE type = 'default';`,
		},
	}
}
