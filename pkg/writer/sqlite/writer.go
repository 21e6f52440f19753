// Package sqlite provides SQLite database writing for assembly index results
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ChrisMcGann/recma/pkg/config"
	"github.com/ChrisMcGann/recma/pkg/estimator"
	"github.com/ChrisMcGann/recma/pkg/uncertainty"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// schemaVersion is written to HeaderTable
	schemaVersion = 1
)

// Writer handles writing estimate reports to SQLite database files
type Writer struct {
	db                *sql.DB
	outputPath        string
	runID             string
	cfg               *config.Config
	description       string
	estimateStmt      *sql.Stmt
	decompositionStmt *sql.Stmt
	estimateID        int
	written           int
	closed            bool
}

// NewWriter creates a new SQLite writer. cfg is stored with the run and
// names the central key and uncertainty mode of every row.
func NewWriter(outputPath string, cfg *config.Config) (*Writer, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      uuid.NewString(),
		cfg:        cfg,
		estimateID: 1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := w.nextEstimateID(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// RunID identifies the rows written by this writer.
func (w *Writer) RunID() string {
	return w.runID
}

// SetDescription sets the free-text description stored in HeaderTable.
func (w *Writer) SetDescription(description string) {
	w.description = description
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS EstimateTable (
		EstimateId INTEGER PRIMARY KEY,
		RunId TEXT NOT NULL,
		Mass DOUBLE NOT NULL,
		Lower DOUBLE,
		Upper DOUBLE,
		Mean DOUBLE,
		Central DOUBLE,
		CentralKey TEXT,
		Mode TEXT,
		DirectLower DOUBLE,
		DirectUpper DOUBLE,
		ConsensusLower DOUBLE,
		ConsensusUpper DOUBLE,
		Nodes INTEGER,
		MemoHits INTEGER,
		SampleCount INTEGER,
		blobSamples BLOB,
		CreationDate TEXT
	);

	CREATE TABLE IF NOT EXISTS DecompositionTable (
		DecompositionId INTEGER PRIMARY KEY AUTOINCREMENT,
		EstimateId INTEGER REFERENCES EstimateTable(EstimateId),
		Mass DOUBLE,
		Child DOUBLE,
		Complement DOUBLE,
		Shared DOUBLE,
		Corrected BOOL,
		Selected BOOL,
		Depth INTEGER,
		Lower DOUBLE,
		Upper DOUBLE,
		Central DOUBLE
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		RunId TEXT,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		Description TEXT,
		Estimates INTEGER,
		Configuration BLOB_TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// nextEstimateID continues numbering after rows left by earlier runs
func (w *Writer) nextEstimateID() error {
	var last sql.NullInt64
	if err := w.db.QueryRow(`SELECT MAX(EstimateId) FROM EstimateTable`).Scan(&last); err != nil {
		return fmt.Errorf("failed to read estimate ids: %w", err)
	}
	if last.Valid {
		w.estimateID = int(last.Int64) + 1
	}
	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.estimateStmt, err = w.db.Prepare(`
		INSERT INTO EstimateTable (
			EstimateId, RunId, Mass, Lower, Upper, Mean, Central, CentralKey,
			Mode, DirectLower, DirectUpper, ConsensusLower, ConsensusUpper,
			Nodes, MemoHits, SampleCount, blobSamples, CreationDate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare estimate statement: %w", err)
	}

	w.decompositionStmt, err = w.db.Prepare(`
		INSERT INTO DecompositionTable (
			EstimateId, Mass, Child, Complement, Shared, Corrected,
			Selected, Depth, Lower, Upper, Central
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare decomposition statement: %w", err)
	}

	return nil
}

// WriteReport writes one estimate and its decompositions. It returns the
// EstimateId of the new row.
func (w *Writer) WriteReport(report *estimator.Report) (int, error) {
	key, err := uncertainty.ParseKey(w.cfg.CentralKey)
	if err != nil {
		return 0, fmt.Errorf("failed to write estimate: %w", err)
	}

	est := report.Estimate
	var sampleCount int
	var samplesBlob []byte
	if s, ok := est.(uncertainty.Samples); ok {
		sampleCount = s.Len()
		samplesBlob = encodeFloat64(s.Values())
	}

	direct, consensus := report.Direct, report.Consensus
	if direct == nil {
		direct = est
	}
	if consensus == nil {
		consensus = est
	}

	id := w.estimateID
	created := time.Now().UTC().Format(time.RFC3339)
	_, err = w.estimateStmt.Exec(
		id,                    // EstimateId
		w.runID,               // RunId
		report.Mass,           // Mass
		est.Lower(),           // Lower
		est.Upper(),           // Upper
		est.Mean(),            // Mean
		est.Central(key),      // Central
		key.String(),          // CentralKey
		w.cfg.UncertaintyMode, // Mode
		direct.Lower(),        // DirectLower
		direct.Upper(),        // DirectUpper
		consensus.Lower(),     // ConsensusLower
		consensus.Upper(),     // ConsensusUpper
		report.Nodes,          // Nodes
		report.MemoHits,       // MemoHits
		sampleCount,           // SampleCount
		samplesBlob,           // blobSamples
		created,               // CreationDate
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert estimate: %w", err)
	}

	for _, d := range report.Decompositions {
		_, err := w.decompositionStmt.Exec(
			id,
			d.Mass,
			d.Child,
			d.Complement,
			d.Shared,
			d.Corrected,
			d.Selected,
			d.Depth,
			d.Estimate.Lower(),
			d.Estimate.Upper(),
			d.Estimate.Central(key),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert decomposition: %w", err)
		}
	}

	w.estimateID++
	w.written++
	return id, nil
}

// encodeFloat64 encodes values as a little-endian float64 blob
func encodeFloat64(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, value := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

// DecodeFloat64 decodes a blob written by the writer
func DecodeFloat64(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(blob))
	}
	values := make([]float64, len(blob)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return values, nil
}

// Finalize writes the header table and closes the database. Call it only
// once every report of the run has been written.
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}

	configYAML, err := yaml.Marshal(w.cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	// Write HeaderTable
	now := time.Now().Format(headerDateFormat)
	_, err = w.db.Exec(`
		INSERT INTO HeaderTable (version, RunId, CreationDate, LastModifiedDate, Description, Estimates, Configuration)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, schemaVersion, w.runID, now, now, w.description, w.written, string(configYAML))
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	return w.Close()
}

// Close releases the statements and the database without writing a header,
// leaving an unfinished run without a HeaderTable row. It is a no-op after
// Finalize.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.estimateStmt != nil {
		w.estimateStmt.Close()
	}
	if w.decompositionStmt != nil {
		w.decompositionStmt.Close()
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
