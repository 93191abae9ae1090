package database

const (
	querySchema = `
	-- Accounts Table (Current State)
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		account_number TEXT NOT NULL UNIQUE,
		balance TEXT NOT NULL DEFAULT '0' CHECK (CAST(balance AS REAL) >= 0),
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Ledger Entries Table (Audit Trail)
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		from_account_id TEXT REFERENCES accounts(id),
		to_account_id TEXT REFERENCES accounts(id),
		amount TEXT NOT NULL,
		entry_type TEXT NOT NULL CHECK (entry_type IN ('DEPOSIT', 'WITHDRAW', 'TRANSFER')),
		created_at TIMESTAMP NOT NULL,
		CHECK (from_account_id IS NOT NULL OR to_account_id IS NOT NULL)
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_entries_from_account ON ledger_entries(from_account_id);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_to_account ON ledger_entries(to_account_id);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_created_at ON ledger_entries(created_at);

	-- Entries are never rewritten
	CREATE TRIGGER IF NOT EXISTS trg_ledger_entries_no_update
	BEFORE UPDATE ON ledger_entries
	BEGIN
		SELECT RAISE(ABORT, 'ledger entries are append-only');
	END;

	CREATE TRIGGER IF NOT EXISTS trg_ledger_entries_no_delete
	BEFORE DELETE ON ledger_entries
	BEGIN
		SELECT RAISE(ABORT, 'ledger entries are append-only');
	END;
	`

	queryInsertAccount = `
		INSERT INTO accounts (id, account_number, balance, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
	`

	queryGetAccountByNumber = `
		SELECT id, account_number, balance, version, created_at, updated_at
		FROM accounts
		WHERE account_number = ?
	`

	queryUpdateAccountBalance = `
		UPDATE accounts
		SET balance = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	queryListAccounts = `
		SELECT id, account_number, balance, version, created_at, updated_at
		FROM accounts
		ORDER BY rowid
	`

	queryInsertLedgerEntry = `
		INSERT INTO ledger_entries (id, from_account_id, to_account_id, amount, entry_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	queryGetEntriesByFromAccount = `
		SELECT rowid, id, from_account_id, to_account_id, amount, entry_type, created_at
		FROM ledger_entries
		WHERE from_account_id = ?
		ORDER BY rowid
	`

	queryGetEntriesByToAccount = `
		SELECT rowid, id, from_account_id, to_account_id, amount, entry_type, created_at
		FROM ledger_entries
		WHERE to_account_id = ?
		ORDER BY rowid
	`
)
