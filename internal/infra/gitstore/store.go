// Package gitstore keeps the local data set as git history using plumbing objects.
package gitstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/taskdeck/internal/domain"
	"github.com/runoshun/taskdeck/internal/infra/crypto"
)

// Store implements domain.SnapshotStore using Git plumbing (refs, blobs and commits).
//
// Data structure:
//
//	refs/<namespace>/
//	  meta   → blob (format YAML)
//	  state  → commit → tree
//	                      snapshot.json → blob (optionally sealed)
//
// Every write that changes the data appends a commit, so the ref log
// doubles as an undo history.
type Store struct {
	repo      *git.Repository
	encryptor *crypto.Encryptor
	now       func() time.Time
	namespace string // e.g., "taskdeck"
	mu        sync.RWMutex
}

// meta contains store metadata.
type meta struct {
	Created   string `yaml:"created"`
	Format    int    `yaml:"format"`
	Encrypted bool   `yaml:"encrypted"`
}

const (
	metaFormat   = 1
	snapshotFile = "snapshot.json"
	authorName   = "taskdeck"
	authorEmail  = "taskdeck@localhost"
)

// New opens the repository at repoPath, creating a bare one if needed.
// If encryptionKey is empty, encryption is disabled.
func New(repoPath, namespace, encryptionKey string) (*Store, error) {
	repo, err := git.PlainOpen(repoPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(repoPath, true)
	}
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}

	var encryptor *crypto.Encryptor
	if encryptionKey != "" {
		encryptor, err = crypto.NewEncryptor(encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("create encryptor: %w", err)
		}
	}

	return NewWithRepo(repo, namespace, encryptor), nil
}

// NewWithRepo creates a new Store with an existing repository instance.
// encryptor may be nil.
func NewWithRepo(repo *git.Repository, namespace string, encryptor *crypto.Encryptor) *Store {
	if namespace == "" {
		namespace = domain.DefaultGitNamespace
	}
	return &Store{
		repo:      repo,
		namespace: namespace,
		encryptor: encryptor,
		now:       time.Now,
	}
}

// refPrefix returns the ref prefix for this namespace.
func (s *Store) refPrefix() string {
	return "refs/" + s.namespace + "/"
}

func (s *Store) stateRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "state")
}

func (s *Store) metaRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "meta")
}

// Load returns the snapshot at the head of the state ref.
func (s *Store) Load() (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, _, err := s.loadLocked()
	return snap, err
}

// Save records snap as a new revision.
func (s *Store) Save(snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, err := s.headLocked()
	if err != nil {
		return err
	}
	return s.commitLocked(snap, head, "save")
}

// Update applies fn to the current snapshot and records the result.
func (s *Store) Update(fn func(snap *domain.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, head, err := s.loadLocked()
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	return s.commitLocked(snap, head, "update")
}

// Initialize writes the metadata blob and a first revision holding
// a fresh data set. Calling it again is a no-op.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadMeta()
	if err != nil {
		return err
	}
	if m == nil {
		m = &meta{
			Format:    metaFormat,
			Encrypted: s.encryptor != nil,
			Created:   s.now().UTC().Format(time.RFC3339),
		}
		if err := s.saveMeta(m); err != nil {
			return err
		}
	}
	if m.Encrypted != (s.encryptor != nil) {
		return domain.ErrEncryptionMismatch
	}

	_, err = s.repo.Reference(s.stateRef(), true)
	if err == nil {
		return nil // Already initialized
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("check state ref: %w", err)
	}

	return s.commitLocked(domain.NewSnapshot(), plumbing.ZeroHash, "initialize")
}

// IsInitialized checks if the state ref exists.
func (s *Store) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := s.repo.Reference(s.stateRef(), true)
	return err == nil
}

// History returns up to limit revisions, newest first.
func (s *Store) History(limit int) ([]domain.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	head, err := s.headLocked()
	if err != nil {
		return nil, err
	}

	var revs []domain.Revision
	for hash := head; !hash.IsZero(); {
		if limit > 0 && len(revs) >= limit {
			break
		}
		commit, err := s.repo.CommitObject(hash)
		if err != nil {
			return nil, fmt.Errorf("get commit %s: %w", hash, err)
		}
		snap, err := s.readCommit(commit)
		if err != nil {
			return nil, err
		}
		revs = append(revs, domain.Revision{
			Hash:    commit.Hash.String(),
			When:    commit.Committer.When,
			Message: commit.Message,
			Tasks:   len(snap.Tasks),
		})
		hash = plumbing.ZeroHash
		if len(commit.ParentHashes) > 0 {
			hash = commit.ParentHashes[0]
		}
	}
	return revs, nil
}

// Restore makes an older revision current by committing its content again.
// rev may be an abbreviated hash.
func (s *Store) Restore(rev string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, err := s.headLocked()
	if err != nil {
		return err
	}
	commit, err := s.findRevision(head, rev)
	if err != nil {
		return err
	}
	snap, err := s.readCommit(commit)
	if err != nil {
		return err
	}
	return s.commitLocked(snap, head, "restore "+commit.Hash.String()[:7])
}

// findRevision walks the first-parent chain from head looking for rev.
func (s *Store) findRevision(head plumbing.Hash, rev string) (*object.Commit, error) {
	if len(rev) < 4 {
		return nil, domain.ErrRevisionNotFound
	}
	for hash := head; !hash.IsZero(); {
		commit, err := s.repo.CommitObject(hash)
		if err != nil {
			return nil, fmt.Errorf("get commit %s: %w", hash, err)
		}
		if strings.HasPrefix(commit.Hash.String(), rev) {
			return commit, nil
		}
		hash = plumbing.ZeroHash
		if len(commit.ParentHashes) > 0 {
			hash = commit.ParentHashes[0]
		}
	}
	return nil, domain.ErrRevisionNotFound
}

// headLocked returns the commit the state ref points at.
func (s *Store) headLocked() (plumbing.Hash, error) {
	ref, err := s.repo.Reference(s.stateRef(), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, domain.ErrNotInitialized
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("get state ref: %w", err)
	}
	return ref.Hash(), nil
}

func (s *Store) loadLocked() (*domain.Snapshot, plumbing.Hash, error) {
	head, err := s.headLocked()
	if err != nil {
		return nil, plumbing.ZeroHash, err
	}
	commit, err := s.repo.CommitObject(head)
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("get commit: %w", err)
	}
	snap, err := s.readCommit(commit)
	if err != nil {
		return nil, plumbing.ZeroHash, err
	}
	return snap, head, nil
}

// readCommit decodes the snapshot stored in commit's tree.
func (s *Store) readCommit(commit *object.Commit) (*domain.Snapshot, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}
	entry, err := tree.FindEntry(snapshotFile)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", snapshotFile, err)
	}
	data, err := s.readBlob(entry.Hash)
	if err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	snap.Sanitize()
	return &snap, nil
}

// commitLocked writes snap as a commit on top of parent and moves the state ref.
// Nothing is written when the content equals the parent's.
func (s *Store) commitLocked(snap *domain.Snapshot, parent plumbing.Hash, verb string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	blobHash, err := s.writeBlob(data)
	if err != nil {
		return err
	}
	treeHash, err := s.writeTree(blobHash)
	if err != nil {
		return err
	}

	var parents []plumbing.Hash
	if !parent.IsZero() {
		prev, err := s.repo.CommitObject(parent)
		if err != nil {
			return fmt.Errorf("get parent commit: %w", err)
		}
		if prev.TreeHash == treeHash {
			return nil
		}
		parents = []plumbing.Hash{parent}
	}

	sig := object.Signature{Name: authorName, Email: authorEmail, When: s.now()}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      fmt.Sprintf("%s: %d tasks, %d projects", verb, len(snap.Tasks), len(snap.Projects)),
		TreeHash:     treeHash,
		ParentHashes: parents,
	}

	obj := s.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return fmt.Errorf("encode commit: %w", err)
	}
	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return fmt.Errorf("store commit: %w", err)
	}

	ref := plumbing.NewHashReference(s.stateRef(), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set state ref: %w", err)
	}
	return nil
}

func (s *Store) writeTree(blobHash plumbing.Hash) (plumbing.Hash, error) {
	tree := &object.Tree{Entries: []object.TreeEntry{{
		Name: snapshotFile,
		Mode: filemode.Regular,
		Hash: blobHash,
	}}}

	obj := s.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode tree: %w", err)
	}
	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store tree: %w", err)
	}
	return hash, nil
}

// loadMeta returns nil if no metadata was written yet.
func (s *Store) loadMeta() (*meta, error) {
	ref, err := s.repo.Reference(s.metaRef(), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meta ref: %w", err)
	}

	// Metadata is never encrypted so a wrong key can be detected.
	data, err := s.readRawBlob(ref.Hash())
	if err != nil {
		return nil, err
	}
	var m meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}
	return &m, nil
}

func (s *Store) saveMeta(m *meta) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	hash, err := s.writeRawBlob(data)
	if err != nil {
		return err
	}
	ref := plumbing.NewHashReference(s.metaRef(), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set meta ref: %w", err)
	}
	return nil
}

// writeBlob writes data as a blob, optionally encrypted.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	if s.encryptor != nil {
		encrypted, err := s.encryptor.Encrypt(data)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("encrypt data: %w", err)
		}
		data = encrypted
	}
	return s.writeRawBlob(data)
}

func (s *Store) writeRawBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}
	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}
	return hash, nil
}

// readBlob reads and optionally decrypts data from a blob.
func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	data, err := s.readRawBlob(hash)
	if err != nil {
		return nil, err
	}
	if s.encryptor != nil {
		decrypted, err := s.encryptor.Decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("decrypt data: %w", err)
		}
		return decrypted, nil
	}
	return data, nil
}

func (s *Store) readRawBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}
	return data, nil
}

// Ensure Store implements the store ports.
var (
	_ domain.SnapshotStore    = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
	_ domain.SnapshotHistory  = (*Store)(nil)
)
