package cspice_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice"
)

func Example() {
	lib, err := cspice.Open(cspice.Config{Kernels: []string{"naif0012.tls"}})
	if errors.Is(err, cspice.ErrNotBuilt) {
		log.Fatal("rebuild with -tags cspice")
	}
	if err != nil {
		log.Fatal(err)
	}
	defer lib.Close()

	err = lib.Do(context.Background(), func(ctx context.Context, tok *cspice.Token) error {
		et, err := cspice.StrToEt(tok, "2024-03-20T03:06:00")
		if err != nil {
			return err
		}
		d, err := cspice.EtToDateTime[cspice.Gregorian, cspice.TDB](tok, et)
		if err != nil {
			return err
		}
		fmt.Println(d)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}

func ExampleLibrary_Acquire() {
	lib, err := cspice.Open(cspice.Config{})
	if err != nil {
		log.Fatal(err)
	}
	tok, err := lib.Acquire(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	defer tok.Release()

	// Helpers take the caller's token through the context instead of
	// acquiring the library a second time.
	ctx := tok.Context(context.Background())
	if err := loadMission(ctx, lib, "mission.tm"); err != nil {
		log.Fatal(err)
	}
}

func loadMission(ctx context.Context, lib *cspice.Library, meta string) error {
	return lib.Do(ctx, func(_ context.Context, tok *cspice.Token) error {
		return cspice.Furnish(tok, meta)
	})
}

func ExampleWithErrorAction() {
	lib, err := cspice.Open(cspice.Config{})
	if err != nil {
		log.Fatal(err)
	}
	_ = lib.Do(context.Background(), func(_ context.Context, tok *cspice.Token) error {
		// Probe for an optional kernel without surfacing the failure.
		return cspice.WithErrorAction(tok, cspice.ActionIgnore, func() error {
			return cspice.Furnish(tok, "optional.bsp")
		})
	})
}

func ExampleError() {
	lib, err := cspice.Open(cspice.Config{})
	if err != nil {
		log.Fatal(err)
	}
	err = lib.Do(context.Background(), func(_ context.Context, tok *cspice.Token) error {
		_, _, err := cspice.SPKPosition(tok, "MOON", 0, "J2000", cspice.AbCorrLTS, "EARTH")
		return err
	})
	var serr *cspice.Error
	switch {
	case errors.Is(err, cspice.ErrNoLoadedFiles):
		fmt.Println("load an SPK first")
	case errors.As(err, &serr):
		fmt.Println(serr.ShortMessage, serr.Traceback)
	}
}
