package steps

import (
	"context"
	"errors"

	"github.com/loykin/occaccept/internal/constants"
	"github.com/loykin/occaccept/pkg/occ"
	"github.com/loykin/occaccept/pkg/verify"
)

// BeforeScenario reads the tech preview setting so teardown can restore it.
func (s *Steps) BeforeScenario(ctx context.Context) error {
	value, err := s.SystemConfigValue(ctx, constants.TechPreviewKey)
	if err != nil {
		return err
	}
	s.sc.SetInitialTechPreview(value)
	s.log.Debug("recorded initial tech preview", "value", value)
	return nil
}

// AfterScenario removes certificates the scenario left behind, then
// restores the tech preview setting. Both run even when the first fails.
func (s *Steps) AfterScenario(ctx context.Context) error {
	return errors.Join(s.removeImportedCertificates(ctx), s.resetTechPreview(ctx))
}

func (s *Steps) removeImportedCertificates(ctx context.Context) error {
	for _, name := range s.sc.RemainingCertificates() {
		res, err := s.run(ctx, occ.New("security:certificates:remove").Arg(name))
		if err != nil {
			return err
		}
		if err := verify.Success(res); err != nil {
			return err
		}
		s.sc.CertificateRemoved(name)
	}
	return nil
}

func (s *Steps) resetTechPreview(ctx context.Context) error {
	switch initial := s.sc.InitialTechPreview(); {
	case initial == "":
		_, err := s.query(ctx, occ.New("config:system:delete").Arg(constants.TechPreviewKey))
		return err
	case initial == "true" && !s.sc.TechPreviewEnabled():
		_, err := s.EnableTechPreview(ctx)
		return err
	case initial == "false" && s.sc.TechPreviewEnabled():
		return s.DisableTechPreview(ctx)
	}
	return nil
}
