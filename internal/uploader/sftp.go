package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/canonical/sosreport-agent/internal/config"
	"github.com/canonical/sosreport-agent/internal/models"
)

// ErrTransferConnection marks a failure to reach the intake server.
var ErrTransferConnection = errors.New("transfer connection failed")

// ErrTransferAuth marks a rejected login on an otherwise reachable server.
var ErrTransferAuth = errors.New("transfer authentication failed")

const dialTimeout = 30 * time.Second

// transferSession is one authenticated connection to the intake server.
// Put is the only primitive the pipeline needs.
type transferSession interface {
	Put(localPath, remotePath string) error
	Close() error
}

type sessionDialFunc func(ctx context.Context, cfg config.Upload) (transferSession, error)

// SFTPUploader uploads reports over a single SFTP session per batch.
type SFTPUploader struct {
	cfg  config.Upload
	dial sessionDialFunc
}

func newSFTPUploader(cfg config.Upload) *SFTPUploader {
	return &SFTPUploader{cfg: cfg, dial: dialSFTP}
}

// Upload opens the session, then attempts every file regardless of earlier
// per-file failures. The session is closed on all exit paths.
func (u *SFTPUploader) Upload(ctx context.Context, files []string) (models.UploadReport, error) {
	session, err := u.dial(ctx, u.cfg)
	if err != nil {
		return models.UploadReport{}, err
	}
	defer func() { _ = session.Close() }()

	report := models.UploadReport{Success: true, Results: make([]models.TransferResult, 0, len(files))}
	for _, file := range files {
		remotePath := RemoteName(file)
		zap.S().Infow("uploading report", "local", file, "remote", remotePath, "server", u.cfg.Server)

		result := models.TransferResult{LocalPath: file, RemotePath: remotePath, Uploaded: true}
		if err := session.Put(file, remotePath); err != nil {
			zap.S().Errorw("upload failed", "local", file, "error", err)
			result.Uploaded = false
			result.Error = err.Error()
			report.Success = false
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func dialSFTP(_ context.Context, cfg config.Upload) (transferSession, error) {
	auth, err := authMethod(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferAuth, err)
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // the intake host key is not pinned
		Timeout:         dialTimeout,
	}

	addr := net.JoinHostPort(cfg.Server, strconv.Itoa(cfg.Port))
	conn, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil, fmt.Errorf("%w: %v", ErrTransferAuth, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransferConnection, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: opening sftp subsystem: %v", ErrTransferConnection, err)
	}
	return &sftpSession{conn: conn, client: client}, nil
}

// authMethod picks private key auth when a key is configured, password
// auth otherwise.
func authMethod(cfg config.Upload) (ssh.AuthMethod, error) {
	if cfg.PrivateKeyFile != "" {
		pem, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading private key: %v", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parsing private key: %v", err)
		}
		return ssh.PublicKeys(signer), nil
	}
	return ssh.Password(cfg.Password), nil
}

type sftpSession struct {
	conn   *ssh.Client
	client *sftp.Client
}

func (s *sftpSession) Put(localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := s.client.Create(remotePath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func (s *sftpSession) Close() error {
	var errs *multierror.Error
	if err := s.client.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := s.conn.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
