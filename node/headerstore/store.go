package headerstore

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// genesisTimestamp is the fallback timestamp() result before any genesis has
// been ingested: 2009-01-03T18:15:05Z, the constant spec §4.6 names.
const genesisTimestamp = 1231006505

// digestSamplePeriod re-verifies one in every this-many claimed hashes
// against the digester, mirroring the source's "static unsigned int count"
// sampling in blockstore_add_header (spec §4.3, Open Question 3).
const digestSamplePeriod = 32

// StopSignal is a cooperative cancellation flag for replay, grounded on
// btc->stop in block-store.c. The zero value means "keep going".
type StopSignal struct {
	stopped atomic.Bool
}

func (s *StopSignal) Stop() {
	if s != nil {
		s.stopped.Store(true)
	}
}

func (s *StopSignal) isStopped() bool {
	return s != nil && s.stopped.Load()
}

// BlockStore is the in-memory active/orphan chain index backed by an
// append-only header log, per spec §3 BlockStore.
type BlockStore struct {
	mu sync.Mutex

	pool entryPool
	ix   *index

	genesisHash Hash
	genesis     *BlockEntry

	bestHash Hash
	tip      *BlockEntry
	height   int32

	log         *headerLog
	manifest    *manifestDB
	checkpoints CheckpointTable
	digester    Digester

	addCount uint64

	cfg Config
}

// Init opens (creating if absent) the header log and manifest under
// cfg.DataDir, replays the log to rebuild in-memory state, and returns a
// ready store. stop may be nil; if non-nil and Stop() is called from
// another goroutine, replay aborts early and Init returns a Cancelled
// error (spec §5 Cancellation).
func Init(cfg Config, checkpoints CheckpointTable, digester Digester, stop *StopSignal) (*BlockStore, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("headerstore: invalid config: %w", err)
	}
	log, err := openHeaderLog(headerFilePath(cfg))
	if err != nil {
		return nil, err
	}
	manifest, err := openManifestDB(cfg.DataDir)
	if err != nil {
		_ = log.close()
		return nil, err
	}

	s := &BlockStore{
		ix:          newIndex(),
		genesisHash: checkpoints.Genesis(),
		height:      -1,
		log:         log,
		manifest:    manifest,
		checkpoints: checkpoints,
		digester:    digester,
		cfg:         cfg,
	}

	if err := s.checkManifestConsistency(); err != nil {
		_ = log.close()
		_ = manifest.close()
		return nil, err
	}

	if err := s.replay(stop); err != nil {
		_ = log.close()
		_ = manifest.close()
		return nil, err
	}
	return s, nil
}

// checkManifestConsistency compares the last snapshot persisted by
// lockedWriteManifest against the header log actually on disk, so Init can
// notice the log changed behind the store's back between runs (the manifest
// file comment's promise). A log that shrank below the recorded height
// means on-disk data the previous run wrote and accounted for has vanished
// -- the on-disk prefix invariant (spec §3.6) can no longer be trusted, so
// this is treated the same as FormatTruncated. A log that grew (an external
// tool appended headers, or a clean shutdown never got to run) is not an
// error: replay simply picks up the extra headers.
func (s *BlockStore) checkManifestConsistency() error {
	rec, found, err := s.manifest.read()
	if err != nil {
		return fmt.Errorf("headerstore: read manifest: %w", err)
	}
	if !found {
		return nil
	}
	wantHeaders := int64(rec.Height) + 1
	if s.log.numHeaders() < wantHeaders {
		return storeErr(ErrCodeFormatTruncated,
			fmt.Sprintf("header log shrank behind the store's back: manifest recorded height %d (%d headers), found %d",
				rec.Height, wantHeaders, s.log.numHeaders()), nil)
	}
	return nil
}

// Shutdown flushes any unwritten entries, persists the manifest snapshot,
// and releases the log file and manifest database. No entry is freed
// individually; the pool is dropped wholesale (spec §5 Resource ownership).
func (s *BlockStore) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// One lockedFlush writes at most maxHeadersPerFlush entries; repeat until
	// the tip itself is written.
	for s.tip != nil && !s.tip.Written {
		if err := s.lockedFlush(); err != nil {
			return err
		}
	}
	if err := s.lockedWriteManifest(); err != nil {
		return err
	}
	if err := s.log.close(); err != nil {
		return err
	}
	if err := s.manifest.close(); err != nil {
		return err
	}
	s.pool.release()
	return nil
}

// Zap deletes the header log for cfg, per spec §6 init(config)/zap(config),
// together with the manifest database whose recorded height would otherwise
// make the next Init reject the empty log. An operator re-running Init
// after Zap gets a fresh empty log and a full re-sync from the network.
func Zap(cfg Config) error {
	path := headerFilePath(cfg)
	if err := removeIfExists(path); err != nil {
		return storeErr(ErrCodeIO, "zap header log", err)
	}
	if err := removeIfExists(filepath.Join(cfg.DataDir, "headerstore", "manifest.db")); err != nil {
		return storeErr(ErrCodeIO, "zap manifest", err)
	}
	return nil
}

// replay reads the header log in chunks and re-ingests every header exactly
// as if it had arrived from the network, marking each Written immediately
// since it is already on disk (spec §4.5 Replay).
func (s *BlockStore) replay(stop *StopSignal) error {
	var offset int64
	for {
		if stop.isStopped() {
			return storeErr(ErrCodeCancelled, "replay cancelled", nil)
		}
		chunk, err := s.log.readChunk(offset)
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			break
		}
		for i := 0; i+HeaderBytes <= len(chunk); i += HeaderBytes {
			raw := chunk[i : i+HeaderBytes]
			header, err := ParseHeaderBytes(raw)
			if err != nil {
				return storeErr(ErrCodeFormatTruncated, "replay: malformed header", err)
			}
			hash, err := s.digester.Digest(raw)
			if err != nil {
				return fmt.Errorf("headerstore: replay digest: %w", err)
			}
			added, _, err := s.lockedAddHeader(header, hash, true)
			if err != nil {
				return err
			}
			if !added {
				return storeErr(ErrCodeFormatTruncated, "replay: log contains a non-extending or duplicate header", nil)
			}
		}
		offset += int64(len(chunk))
	}
	return nil
}

// AddHeader ingests a (header, claimedHash) pair from the network, per spec
// §4.3. It returns (added, orphan). Fatal invariant violations --
// MissingParentInActive and DigestMismatch -- panic rather than return an
// error (spec §7).
func (s *BlockStore) AddHeader(header BlockHeader, claimedHash Hash) (added bool, orphan bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockedAddHeader(header, claimedHash, false)
}

// lockedAddHeader implements the classification rules of spec §4.3. written
// is true only when called from replay, where every record is already on
// disk by construction.
func (s *BlockStore) lockedAddHeader(header BlockHeader, claimedHash Hash, written bool) (added bool, orphan bool, err error) {
	s.addCount++
	if s.addCount%digestSamplePeriod == 0 {
		got, derr := s.digester.Digest(header.Encode()[:])
		if derr != nil {
			return false, false, fmt.Errorf("headerstore: sampled digest: %w", derr)
		}
		if got != claimedHash {
			panic("headerstore: DigestMismatch: sampled claimed hash does not match header digest")
		}
	}

	// 1. Duplicate.
	if s.ix.lookup(claimedHash) != nil {
		return false, false, nil
	}

	// 2. Checkpoint check.
	if !s.checkpoints.Validate(claimedHash, uint32(s.height+1)) {
		return false, false, storeErr(ErrCodeCheckpointMismatch,
			fmt.Sprintf("header at height %d does not match checkpoint", s.height+1), nil)
	}

	// 3. Genesis bootstrap.
	if s.tip == nil {
		if claimedHash != s.genesisHash {
			return false, false, storeErr(ErrCodeCheckpointMismatch, "first header is not the network genesis", nil)
		}
		e := s.pool.alloc(header, claimedHash)
		e.Height = 0
		e.Written = written
		s.ix.insertActive(e)
		s.genesis = e
		s.tip = e
		s.bestHash = claimedHash
		s.height = 0
		return true, false, nil
	}

	// 4. Extends tip.
	if header.PrevBlock == s.bestHash {
		e := s.pool.alloc(header, claimedHash)
		e.Height = s.height + 1
		e.Written = written
		e.Prev = s.tip
		s.tip.Next = e
		s.ix.insertActive(e)
		s.tip = e
		s.bestHash = claimedHash
		s.height = e.Height
		return true, false, nil
	}

	// 5. Orphan.
	e := s.pool.alloc(header, claimedHash)
	e.Height = -1
	e.Written = written
	s.ix.insertOrphan(e)

	if altHeight(s.ix, e) > s.height {
		newHeight := setChainLinks(s.ix, e)
		s.tip = e
		s.bestHash = claimedHash
		s.height = newHeight
	}

	return true, e.Height == -1, nil
}

// lockedFlush walks backward from tip collecting every unwritten entry,
// then appends the oldest maxHeadersPerFlush of them to the log in chain
// order (spec §4.5 Flush). The batch must start adjacent to the existing
// written prefix -- draining the entries nearest the tip instead would
// write a non-contiguous slice of the chain, corrupting the on-disk
// prefix invariant (spec §3.6) and breaking replay. If more than
// maxHeadersPerFlush entries are pending, the caller is expected to call
// Flush again to drain the remainder (spec §9 Open Question 2: a soft
// cap, not an assertion).
func (s *BlockStore) lockedFlush() error {
	if s.tip == nil {
		return nil
	}

	var unwritten []*BlockEntry
	for cur := s.tip; cur != nil && !cur.Written; cur = cur.Prev {
		unwritten = append(unwritten, cur)
	}
	if len(unwritten) == 0 {
		return nil
	}

	// unwritten is tip-to-oldest; reverse to chain order, then take the
	// oldest batch -- the run immediately following the written prefix.
	for i, j := 0, len(unwritten)-1; i < j; i, j = i+1, j-1 {
		unwritten[i], unwritten[j] = unwritten[j], unwritten[i]
	}
	batch := unwritten
	if len(batch) > maxHeadersPerFlush {
		batch = batch[:maxHeadersPerFlush]
	}

	buf := make([]byte, 0, len(batch)*HeaderBytes)
	for _, e := range batch {
		enc := e.Header.Encode()
		buf = append(buf, enc[:]...)
	}

	if err := s.log.appendHeaders(buf); err != nil {
		return err
	}
	for _, e := range batch {
		e.Written = true
	}
	return nil
}

func (s *BlockStore) lockedWriteManifest() error {
	return s.manifest.write(manifestRecord{
		Network:       s.cfg.Network,
		Height:        s.height,
		BestHash:      s.bestHash.String(),
		FileSize:      s.log.fileSize,
		UpdatedAtUnix: time.Now().Unix(),
	})
}

// Flush exposes lockedFlush for callers that want to drive periodic
// persistence themselves (spec §4.5: "the caller is expected to flush
// often enough").
func (s *BlockStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lockedFlush(); err != nil {
		return err
	}
	return s.lockedWriteManifest()
}
