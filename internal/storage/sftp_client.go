package storage

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/dbward/dbward/pkg/config"
	"github.com/dbward/dbward/pkg/logger"
)

// SFTPStore stores backup artifacts on a remote storage box via SFTP
type SFTPStore struct {
	config      *config.Config
	mu          sync.Mutex
	sshClient   *ssh.Client
	sftpClient  *sftp.Client
	connected   bool
	lastUsed    time.Time // For connection timeout
	idleTimeout time.Duration
}

// NewSFTPStore creates a new SFTP blob store
func NewSFTPStore(cfg *config.Config) (*SFTPStore, error) {
	if cfg.SFTPHost == "" || cfg.SFTPUser == "" || cfg.SFTPPassword == "" {
		return nil, fmt.Errorf("sftp credentials missing in configuration")
	}

	return &SFTPStore{
		config:      cfg,
		idleTimeout: 5 * time.Minute, // Close connection after 5min idle
	}, nil
}

// ensureConnected checks if connection is alive and reconnects if needed.
// Caller must hold the mutex.
func (s *SFTPStore) ensureConnected() error {
	if s.connected && time.Since(s.lastUsed) > s.idleTimeout {
		logger.Info("SFTP: Connection idle too long, reconnecting", map[string]interface{}{
			"idle_duration": time.Since(s.lastUsed).Round(time.Second),
		})
		s.closeLocked()
	}

	if !s.connected {
		return s.connectLocked()
	}

	s.lastUsed = time.Now()
	return nil
}

func (s *SFTPStore) connectLocked() error {
	sshConfig := &ssh.ClientConfig{
		User: s.config.SFTPUser,
		Auth: []ssh.AuthMethod{
			ssh.Password(s.config.SFTPPassword),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // Storage boxes commonly use self-signed keys
		Timeout:         30 * time.Second,
	}

	address := fmt.Sprintf("%s:%d", s.config.SFTPHost, s.config.SFTPPort)
	logger.Info("SFTP: Connecting to storage box", map[string]interface{}{
		"host": s.config.SFTPHost,
		"port": s.config.SFTPPort,
		"user": s.config.SFTPUser,
	})

	sshClient, err := ssh.Dial("tcp", address, sshConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to SSH server: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return fmt.Errorf("failed to create SFTP client: %w", err)
	}

	s.sshClient = sshClient
	s.sftpClient = sftpClient
	s.connected = true
	s.lastUsed = time.Now()

	logger.Info("SFTP: Connected successfully", nil)
	return nil
}

// Close closes the SFTP and SSH connections
func (s *SFTPStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *SFTPStore) closeLocked() {
	if !s.connected {
		return
	}

	if s.sftpClient != nil {
		s.sftpClient.Close()
	}
	if s.sshClient != nil {
		s.sshClient.Close()
	}
	s.connected = false
}

// Put uploads an artifact to the storage box
func (s *SFTPStore) Put(ctx context.Context, artifactPath string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnected(); err != nil {
		return "", err
	}

	remotePath := path.Join(s.config.SFTPBasePath, artifactPath)

	if err := s.sftpClient.MkdirAll(path.Dir(remotePath)); err != nil {
		return "", fmt.Errorf("failed to create remote directory: %w", err)
	}

	file, err := s.sftpClient.Create(remotePath)
	if err != nil {
		s.closeLocked() // Force reconnect on next use
		return "", fmt.Errorf("failed to create remote file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		s.closeLocked()
		return "", fmt.Errorf("failed to write remote file: %w", err)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close remote file: %w", err)
	}

	logger.Debug("SFTP: Artifact uploaded", map[string]interface{}{
		"remote_path": remotePath,
		"size_bytes":  len(data),
	})

	return remotePath, nil
}

// Delete removes an artifact from the storage box
func (s *SFTPStore) Delete(ctx context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnected(); err != nil {
		return err
	}

	if err := s.sftpClient.Remove(location); err != nil {
		return fmt.Errorf("failed to delete remote file: %w", err)
	}

	return nil
}
