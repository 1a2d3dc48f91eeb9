package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// FileExists checks if a regular file exists. Errors other than "not exist"
// are returned so callers never mistake an unreadable file for a missing one.
func FileExists(filename string, logger *zap.SugaredLogger) (bool, error) {
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debugf("File does not exist: %s", filename)
			return false, nil
		}

		logger.Warnf("Error checking file %s for existence: %s", filename, err)
		return false, err
	}

	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", filename)
	}
	return true, nil
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteDataFile replaces the contents of a data file, creating it if needed.
func WriteDataFile(filePath string, data []byte) (err error) {
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error opening data file %s: %w", filepath.Base(filePath), err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	fileLen, err := file.Write(data)
	if err != nil {
		return fmt.Errorf("error writing to data file %s: %w", filepath.Base(filePath), err)
	}

	if fileLen != len(data) {
		return fmt.Errorf("error writing to data file %s: wrote %d bytes, expected %d",
			filepath.Base(filePath), fileLen, len(data))
	}

	return nil
}

func EncodeBSON(data map[string]interface{}) ([]byte, error) {
	bsonData, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error encoding BSON: %w", err)
	}
	return bsonData, nil
}

func DecodeBSON(bsonData []byte) (interface{}, error) {
	var decodedData map[string]interface{}
	if err := bson.Unmarshal(bsonData, &decodedData); err != nil {
		return nil, fmt.Errorf("error decoding BSON: %w", err)
	}
	return decodedData, nil
}
