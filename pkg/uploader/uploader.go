// Package uploader compresses the photos attached to checklist items, stores
// them and registers their public URLs with the backend in one batch.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/inspectphoto/pkg/compression"
	"github.com/thebartekbanach/inspectphoto/pkg/metrics"
	"github.com/thebartekbanach/inspectphoto/pkg/photo"
	"github.com/thebartekbanach/inspectphoto/pkg/registration"
	"github.com/thebartekbanach/inspectphoto/pkg/runner"
	"github.com/thebartekbanach/inspectphoto/pkg/storage"
)

type uploadTask struct {
	image     photo.SourceImage
	contextID int64
}

type ChecklistUploader struct {
	compressor compression.Compressor
	storage    storage.ObjectStorage
	registrar  registration.Registrar
	config     Config

	newID   func() string
	log     logrus.FieldLogger
	metrics *metrics.Pipeline
}

type Option func(*ChecklistUploader)

func WithLogger(log logrus.FieldLogger) Option {
	return func(u *ChecklistUploader) { u.log = log }
}

func WithMetrics(m *metrics.Pipeline) Option {
	return func(u *ChecklistUploader) { u.metrics = m }
}

// WithIDGenerator replaces the random file name generator.
func WithIDGenerator(newID func() string) Option {
	return func(u *ChecklistUploader) { u.newID = newID }
}

func NewChecklistUploader(
	compressor compression.Compressor,
	objectStorage storage.ObjectStorage,
	registrar registration.Registrar,
	config Config,
	options ...Option,
) *ChecklistUploader {
	u := &ChecklistUploader{
		compressor: compressor,
		storage:    objectStorage,
		registrar:  registrar,
		config:     config.withDefaults(),
		newID:      uuid.NewString,
		log:        logrus.StandardLogger(),
	}

	for _, option := range options {
		option(u)
	}

	return u
}

// Upload stores every file of filesByItemTitle whose title resolves to a
// context id and registers all resulting URLs under recordID with a single
// call. It returns the number of registered photos. Any failure aborts the
// whole batch; objects stored before the failure are not removed.
func (u *ChecklistUploader) Upload(
	ctx context.Context,
	recordID int64,
	filesByItemTitle map[string][]photo.SourceImage,
	itemTitleToContextID map[string]int64,
) (int, error) {
	tasks := flattenTasks(filesByItemTitle, itemTitleToContextID)
	if len(tasks) == 0 {
		return 0, nil
	}

	log := u.log.WithFields(logrus.Fields{"recordId": recordID, "photos": len(tasks)})
	log.Debug("uploading checklist photos")

	items, err := runner.Run(ctx, tasks, u.config.Concurrency, func(ctx context.Context, task uploadTask, index int) (registration.Item, error) {
		return u.process(ctx, recordID, task)
	})
	if err != nil {
		log.WithError(err).Error("checklist photo upload failed")
		return 0, err
	}

	err = u.registrar.Register(ctx, recordID, items)
	u.metrics.ObserveRegistration(len(items), err)
	if err != nil {
		log.WithError(err).Error("cannot register uploaded photos")
		return 0, err
	}

	log.Info("checklist photos registered")
	return len(items), nil
}

func (u *ChecklistUploader) process(ctx context.Context, recordID int64, task uploadTask) (registration.Item, error) {
	artifact, err := u.compressor.Compress(ctx, task.image, u.config.Compression)
	if err != nil {
		return registration.Item{}, err
	}

	if artifact.Extension == "" {
		return registration.Item{}, fmt.Errorf("%w: %s", ErrMissingExtension, task.image.Filename)
	}

	objectPath := ObjectPath(recordID, task.contextID, u.newID()+"."+artifact.Extension)
	err = u.storage.Upload(ctx, u.config.Bucket, objectPath, artifact.Data, storage.UploadOptions{
		CacheControl: u.config.CacheControl,
		Upsert:       false,
		ContentType:  artifact.MimeType,
	})
	u.metrics.ObserveUpload(err)
	if err != nil {
		return registration.Item{}, err
	}

	u.log.WithFields(logrus.Fields{
		"path":    objectPath,
		"bytes":   artifact.Size(),
		"outcome": artifact.Outcome,
	}).Debug("photo uploaded")

	return registration.Item{
		ContextID: task.contextID,
		URL:       u.storage.PublicURL(u.config.Bucket, objectPath),
	}, nil
}

// ObjectPath is the storage location of a photo: os-{recordId}/check-{contextId}/{filename}.
func ObjectPath(recordID, contextID int64, filename string) string {
	return fmt.Sprintf("os-%d/check-%d/%s", recordID, contextID, filename)
}

// flattenTasks visits titles in sorted order so the registered items have a
// stable order.
func flattenTasks(filesByItemTitle map[string][]photo.SourceImage, itemTitleToContextID map[string]int64) []uploadTask {
	titles := make([]string, 0, len(filesByItemTitle))
	for title, files := range filesByItemTitle {
		if len(files) == 0 {
			continue
		}
		if _, ok := itemTitleToContextID[title]; !ok {
			continue
		}

		titles = append(titles, title)
	}
	sort.Strings(titles)

	var tasks []uploadTask
	for _, title := range titles {
		contextID := itemTitleToContextID[title]
		for _, file := range filesByItemTitle[title] {
			tasks = append(tasks, uploadTask{file, contextID})
		}
	}

	return tasks
}

var (
	ErrMissingExtension = errors.New("artifact has no file extension")
)
