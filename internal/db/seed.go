package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/AlekSi/pointer"
)

const seedAuthor = "seed"

// Seed inserts the initial approved directory entries. Existing usernames are
// left untouched, so running it on every start is safe.
func (r *ProfileRepository) Seed() error {
	seed := []Profile{
		{Username: "thebitsamuraiizz", Age: pointer.ToInt(13), Country: pointer.ToString("Азербайджан"), City: pointer.ToString("Баку"), Timezone: pointer.ToString("UTC+4"), TzOffset: pointer.ToInt(4), Languages: pointer.ToString("Русский, Английский, Азербайджанский")},
		{Username: "SkeeYee_j", Age: pointer.ToInt(16), Country: pointer.ToString("Россия"), Timezone: pointer.ToString("+5 к мск"), TzOffset: pointer.ToInt(5)},
		{Username: "Cannella_S"},
		{Username: "nurkotik", Age: pointer.ToInt(15), Country: pointer.ToString("Украина")},
		{Username: "FAFNIR5", Age: pointer.ToInt(16), Name: pointer.ToString("Назар"), Country: pointer.ToString("Центральная Европа"), City: pointer.ToString("Виттен"), Timezone: pointer.ToString("UTC+1"), TzOffset: pointer.ToInt(1)},
		{Username: "doob_rider", Age: pointer.ToInt(16), Name: pointer.ToString("Мирхан"), Country: pointer.ToString("Казахстан"), Timezone: pointer.ToString("+2 к мск"), TzOffset: pointer.ToInt(2)},
		{Username: "Tecno2027", Age: pointer.ToInt(14), Name: pointer.ToString("Тимофей"), Country: pointer.ToString("Россия"), City: pointer.ToString("Екатеринбург"), Timezone: pointer.ToString("UTC+5"), TzOffset: pointer.ToInt(5)},
		{Username: "kixxzzl", Age: pointer.ToInt(15), Name: pointer.ToString("Алёна"), Country: pointer.ToString("Беларусь"), City: pointer.ToString("посёлок Красногорский")},
		{Username: "L9g9nda", Age: pointer.ToInt(11), Name: pointer.ToString("создатель"), Country: pointer.ToString("Украина"), City: pointer.ToString("Полтава"), Timezone: pointer.ToString("+1 к мск"), TzOffset: pointer.ToInt(1)},
		{Username: "denji_kuni", Age: pointer.ToInt(12), Country: pointer.ToString("Азербайджан"), Timezone: pointer.ToString("+1 к мск"), TzOffset: pointer.ToInt(1)},
	}

	for i := range seed {
		p := &seed[i]

		_, err := r.GetByUsername(p.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("ProfileRepository.Seed: %w", err)
		}

		p.AddedBy = seedAuthor
		p.Status = StatusApproved
		p.AddedAt = time.Now().UTC()

		if _, err := r.Create(p); err != nil {
			return fmt.Errorf("ProfileRepository.Seed: %w", err)
		}
	}

	return nil
}
