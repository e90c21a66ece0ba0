package app

import (
	"context"
	"fmt"

	auditHTTP "github.com/hardwarexpress/audittrail/internal/audit/http"
	auditMySQL "github.com/hardwarexpress/audittrail/internal/audit/repository/mysql"
	auditPostgreSQL "github.com/hardwarexpress/audittrail/internal/audit/repository/postgresql"
	auditService "github.com/hardwarexpress/audittrail/internal/audit/service"
	auditUseCase "github.com/hardwarexpress/audittrail/internal/audit/usecase"
)

// KMSService returns the KMS service used to unwrap the audit signing key.
func (c *Container) KMSService() auditService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = auditService.NewKMSService()
	})
	return c.kmsService
}

// AuditLogSigner returns the tamper signer for audit log entries. Returns nil
// when signing is not configured: entries are then recorded unsigned.
func (c *Container) AuditLogSigner() (auditService.AuditLogSigner, error) {
	var err error
	c.auditLogSignerInit.Do(func() {
		c.auditLogSigner, err = c.initAuditLogSigner()
		if err != nil {
			c.initErrors["auditLogSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogSigner"]; exists {
		return nil, storedErr
	}
	return c.auditLogSigner, nil
}

// Classifier returns the HTTP client for the anomaly classification service.
func (c *Container) Classifier() auditService.Classifier {
	c.classifierInit.Do(func() {
		c.classifier = auditService.NewClassifierClient(c.config.ClassifierURL)
	})
	return c.classifier
}

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	var err error
	c.auditLogRepositoryInit.Do(func() {
		c.auditLogRepository, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepository"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepository, nil
}

// ClassificationResultRepository returns the classification result repository
// based on database driver.
func (c *Container) ClassificationResultRepository() (auditUseCase.ClassificationResultRepository, error) {
	var err error
	c.classificationResultRepositoryInit.Do(func() {
		c.classificationResultRepository, err = c.initClassificationResultRepository()
		if err != nil {
			c.initErrors["classificationResultRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["classificationResultRepository"]; exists {
		return nil, storedErr
	}
	return c.classificationResultRepository, nil
}

// ClassificationUseCase returns the classification pipeline. Returns nil when
// no classification service is configured: recorded entries then stay pending.
func (c *Container) ClassificationUseCase() (auditUseCase.ClassificationUseCase, error) {
	var err error
	c.classificationUseCaseInit.Do(func() {
		c.classificationUseCase, err = c.initClassificationUseCase()
		if err != nil {
			c.initErrors["classificationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["classificationUseCase"]; exists {
		return nil, storedErr
	}
	return c.classificationUseCase, nil
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// AuditLogHandler returns the HTTP handler for audit log operations.
func (c *Container) AuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	var err error
	c.auditLogHandlerInit.Do(func() {
		c.auditLogHandler, err = c.initAuditLogHandler()
		if err != nil {
			c.initErrors["auditLogHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogHandler"]; exists {
		return nil, storedErr
	}
	return c.auditLogHandler, nil
}

// initAuditLogSigner unwraps the signing root key through the configured KMS
// keeper and builds the HMAC signer from it.
func (c *Container) initAuditLogSigner() (auditService.AuditLogSigner, error) {
	if !c.config.SigningEnabled() {
		return nil, nil
	}

	rootKey, err := auditService.UnwrapSigningKey(
		context.Background(),
		c.KMSService(),
		c.config.AuditSigningKMSKeyURI,
		c.config.AuditSigningWrappedKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap audit signing key: %w", err)
	}

	signer, err := auditService.NewAuditLogSigner(rootKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log signer: %w", err)
	}

	return signer, nil
}

// initAuditLogRepository creates the audit log repository based on the database driver.
func (c *Container) initAuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditPostgreSQL.NewPostgreSQLAuditLogRepository(db), nil
	case "mysql":
		return auditMySQL.NewMySQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initClassificationResultRepository creates the classification result
// repository based on the database driver.
func (c *Container) initClassificationResultRepository() (auditUseCase.ClassificationResultRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for classification result repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditPostgreSQL.NewPostgreSQLClassificationResultRepository(db), nil
	case "mysql":
		return auditMySQL.NewMySQLClassificationResultRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initClassificationUseCase creates the classification pipeline with all its
// dependencies.
func (c *Container) initClassificationUseCase() (auditUseCase.ClassificationUseCase, error) {
	if !c.config.ClassificationEnabled() {
		return nil, nil
	}

	auditLogRepository, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for classification use case: %w", err)
	}

	resultRepository, err := c.ClassificationResultRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get classification result repository for classification use case: %w", err)
	}

	classificationConfig := auditUseCase.ClassificationConfig{
		Timeout:        c.config.ClassifierTimeout,
		MaxConcurrent:  int64(c.config.ClassifierMaxConcurrent),
		ScoreThreshold: c.config.ClassifierScoreThreshold,
	}

	baseUseCase := auditUseCase.NewClassificationUseCase(
		classificationConfig,
		c.Classifier(),
		auditLogRepository,
		resultRepository,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for classification use case: %w", err)
		}
		return auditUseCase.NewClassificationUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuditLogUseCase creates the audit log use case with all its dependencies.
func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	auditLogRepository, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit log use case: %w", err)
	}

	auditLogSigner, err := c.AuditLogSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log signer for audit log use case: %w", err)
	}

	classificationUseCase, err := c.ClassificationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get classification use case for audit log use case: %w", err)
	}

	baseUseCase := auditUseCase.NewAuditLogUseCase(
		auditLogRepository,
		auditLogSigner,
		classificationUseCase,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit log use case: %w", err)
		}
		return auditUseCase.NewAuditLogUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuditLogHandler creates the audit log HTTP handler with all its dependencies.
func (c *Container) initAuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for audit log handler: %w", err)
	}

	return auditHTTP.NewAuditLogHandler(auditLogUseCase, c.Logger()), nil
}
