package services

import (
	"crm/database"
	"crm/utils"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func decode[T any](raw bson.Raw) (T, error) {
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

func decodeAll[T any](raws []bson.Raw) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		item, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func parseOptionalID(field, hex string) (bson.ObjectID, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return bson.ObjectID{}, nil
	}

	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, utils.NewValidationError(field, "invalid id format")
	}
	return id, nil
}

func readError(entity string, id bson.ObjectID, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return utils.NewNotFoundError(entity, id.Hex())
	}
	return fmt.Errorf("read %s %s: %w", entity, id.Hex(), err)
}

func writeError(op, entity string, id bson.ObjectID, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return utils.NewNotFoundError(entity, id.Hex())
	}
	return utils.NewRemoteWriteError(op, err)
}
