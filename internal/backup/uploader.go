package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jlaffaye/ftp"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const ftpDialTimeout = 30 * time.Second

// Uploader ships a finished backup file somewhere off the database host.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, fileName string, content []byte) error
}

var _ Uploader = (*FTPUploader)(nil)

type FTPUploader struct {
	addr     string
	username string
	password string
	timeout  time.Duration
}

func NewFTPUploader(settings *FTPSettings) *FTPUploader {
	return &FTPUploader{
		addr:     settings.Addr(),
		username: settings.Username,
		password: settings.Password,
		timeout:  ftpDialTimeout,
	}
}

func (u *FTPUploader) Name() string {
	return "ftp"
}

func (u *FTPUploader) Upload(ctx context.Context, fileName string, content []byte) error {
	conn, err := ftp.Dial(u.addr, ftp.DialWithTimeout(u.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return fmt.Errorf("connect %s: %w", u.addr, err)
	}
	defer func() {
		if quitErr := conn.Quit(); quitErr != nil {
			log.Debugf("backup: ftp quit: %s", quitErr)
		}
	}()

	if err := conn.Login(u.username, u.password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	// the server switches to passive mode on its own, STOR opens the data connection
	if err := conn.Stor(fileName, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("stor %s: %w", fileName, err)
	}

	log.Debugf("backup: %s stored on %s [%d bytes]", fileName, u.addr, len(content))
	return nil
}

var _ Uploader = (*DriveUploader)(nil)

// DriveUploader keeps an extra copy of every backup in a Google Drive folder.
type DriveUploader struct {
	service  *drive.Service
	folderID string
}

func NewDriveUploader(ctx context.Context, folderID string, opts ...option.ClientOption) (*DriveUploader, error) {
	opts = append([]option.ClientOption{option.WithScopes(drive.DriveFileScope)}, opts...)
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve drive client: %w", err)
	}

	return &DriveUploader{
		service:  service,
		folderID: folderID,
	}, nil
}

// NewDriveUploaderFromFile authenticates with a service account key file.
func NewDriveUploaderFromFile(ctx context.Context, credentialsFile, folderID string) (*DriveUploader, error) {
	return NewDriveUploader(ctx, folderID, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
}

func (u *DriveUploader) Name() string {
	return "google-drive"
}

func (u *DriveUploader) Upload(ctx context.Context, fileName string, content []byte) error {
	meta := &drive.File{
		Name:     fileName,
		MimeType: "application/json",
	}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}

	created, err := u.service.
		Files.Create(meta).
		Media(bytes.NewReader(content)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("create drive file %s: %w", fileName, err)
	}

	log.Debugf("backup: %s uploaded to google drive: %s", fileName, created.Id)
	return nil
}

// uploadAll runs every uploader and combines their errors.
func uploadAll(ctx context.Context, uploaders []Uploader, fileName string, content []byte) error {
	var errs error
	for _, u := range uploaders {
		if err := u.Upload(ctx, fileName, content); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", u.Name(), err))
		}
	}
	return errs
}
