package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/mmd-core/internal/assets"
	"github.com/Faultbox/mmd-core/internal/logger"
	"github.com/Faultbox/mmd-core/pkg/animation"
	"github.com/Faultbox/mmd-core/pkg/archive"
	"github.com/Faultbox/mmd-core/pkg/formats"
	"github.com/Faultbox/mmd-core/pkg/loader"
	"github.com/Faultbox/mmd-core/pkg/model"
	"github.com/Faultbox/mmd-core/pkg/pose"
)

func (a *app) cmdInfo(args []string) error {
	if len(args) != 1 {
		return usageError("info <file>")
	}

	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	switch formats.Detect(data) {
	case formats.FormatPMX:
		return a.infoPMX(args[0], data)
	case formats.FormatVMD:
		return a.infoVMD(args[0], data)
	default:
		return fmt.Errorf("%s: %w", args[0], loader.ErrUnsupportedFormat)
	}
}

func (a *app) infoPMX(name string, data []byte) error {
	pmx, err := formats.ParsePMX(data)
	if err != nil {
		return err
	}
	m, err := loader.BuildModel(pmx)
	if err != nil {
		return err
	}

	h := &pmx.Header
	w := pmx.Widths
	comment, _, _ := strings.Cut(strings.TrimSpace(pmx.Description.Comment(h.Encoding)), "\n")

	fmt.Fprintf(a.stdout, "File:      %s\n", name)
	fmt.Fprintf(a.stdout, "Model:     %s\n", m.Name)
	fmt.Fprintf(a.stdout, "Comment:   %s\n", strings.TrimSpace(comment))
	fmt.Fprintf(a.stdout, "Format:    PMX %.1f, %s\n", h.Version, h.Encoding)
	fmt.Fprintf(a.stdout, "Widths:    vertex=%s texture=%s material=%s bone=%s morph=%s body=%s\n",
		w.Vertex, w.Texture, w.Material, w.Bone, w.Morph, w.Body)
	fmt.Fprintf(a.stdout, "Vertices:  %d (%d additional UVs)\n", len(pmx.Vertices), h.AdditionalUVs)
	fmt.Fprintf(a.stdout, "Faces:     %d\n", pmx.Indices.Len()/3)
	fmt.Fprintf(a.stdout, "Meshes:    %d (%d unique vertices)\n", len(m.Meshes), m.VertexCount())
	fmt.Fprintf(a.stdout, "Textures:  %d\n", len(m.Textures))
	fmt.Fprintf(a.stdout, "Bones:     %d (%d IK)\n", len(m.Bones), len(m.IKs))

	b := m.Bounds()
	if !b.Empty() {
		fmt.Fprintf(a.stdout, "Bounds:    %v .. %v (size %v)\n", b.Min, b.Max, b.Size())
	}
	return nil
}

func (a *app) infoVMD(name string, data []byte) error {
	vmd, err := formats.ParseVMD(data)
	if err != nil {
		return err
	}

	frames := vmd.FrameCount()
	fps := a.cfg.Animation.FrameRate

	fmt.Fprintf(a.stdout, "File:      %s\n", name)
	fmt.Fprintf(a.stdout, "Model:     %s\n", vmd.Header.Name)
	fmt.Fprintf(a.stdout, "Length:    %d frames (%.2fs at %g fps)\n", frames, float32(frames)/fps, fps)
	fmt.Fprintf(a.stdout, "Bones:     %d frames, %d clips\n", len(vmd.Bones), vmd.BoneAnimator().Len())
	fmt.Fprintf(a.stdout, "Morphs:    %d frames, %d clips\n", len(vmd.Morphs), vmd.MorphAnimator().Len())
	fmt.Fprintf(a.stdout, "Camera:    %d frames\n", len(vmd.Cameras))
	fmt.Fprintf(a.stdout, "Light:     %d frames\n", len(vmd.Lights))
	fmt.Fprintf(a.stdout, "Shadow:    %d frames\n", len(vmd.SelfShadows))
	return nil
}

func (a *app) loadModel(p string) (*model.Model, error) {
	data, err := readInput(p)
	if err != nil {
		return nil, err
	}
	m, err := loader.LoadModel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return m, nil
}

func (a *app) cmdMeshes(args []string) error {
	if len(args) != 1 {
		return usageError("meshes <model>")
	}
	m, err := a.loadModel(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%-4s %-24s %8s %8s %-6s %s\n", "#", "material", "vertices", "faces", "draw", "texture")
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		mat := &m.Materials[mesh.MaterialID]
		tex, ok := m.Texture(mat.DiffuseTexture)
		if !ok {
			tex = "-"
		}
		draw := []byte("--")
		if mat.DoubleSided() {
			draw[0] = '2'
		}
		if mat.HasEdge() {
			draw[1] = 'e'
		}
		fmt.Fprintf(a.stdout, "%-4d %-24s %8d %8d %-6s %s\n",
			i, mesh.Name, mesh.VertexCount(), mesh.TriangleCount(), draw, tex)
	}
	fmt.Fprintf(a.stdout, "\n(%d meshes, %d vertices, %d faces)\n",
		len(m.Meshes), m.VertexCount(), m.IndexCount()/3)
	return nil
}

func (a *app) cmdBones(args []string) error {
	if len(args) != 1 {
		return usageError("bones <model>")
	}
	m, err := a.loadModel(args[0])
	if err != nil {
		return err
	}

	solvers := make(map[int]*model.Solver, len(m.IKs))
	for i := range m.IKs {
		solvers[m.IKs[i].Bone] = &m.IKs[i]
	}

	fmt.Fprintf(a.stdout, "%-4s %-20s %6s %6s %6s\n", "#", "name", "parent", "level", "flags")
	for i := range m.Bones {
		b := &m.Bones[i]
		parent := "-"
		if !b.IsRoot() && b.Parent < len(m.Bones) {
			parent = fmt.Sprint(b.Parent)
		}
		line := fmt.Sprintf("%-4d %-20s %6s %6d %#06x", i, b.Name, parent, b.Level, b.Flags)
		if s, ok := solvers[i]; ok {
			line += fmt.Sprintf("  IK -> %d (%d loops, %d links)", s.TargetBone, s.LoopCount, len(s.Links))
		}
		fmt.Fprintln(a.stdout, line)
	}
	fmt.Fprintf(a.stdout, "\n(%d bones, %d IK)\n", len(m.Bones), len(m.IKs))
	return nil
}

// newAssetManager registers the configured search paths and archives.
// Unusable entries are logged and skipped.
func (a *app) newAssetManager() *assets.Manager {
	log := logger.Named("mmdtool")
	mgr := assets.NewManager()
	for _, dir := range a.cfg.Data.SearchPaths {
		if err := mgr.AddDir(dir); err != nil {
			log.Warn("skipping search path", zap.String("path", dir), zap.Error(err))
		}
	}
	for _, zipPath := range a.cfg.Data.Archives {
		if err := mgr.AddArchive(zipPath); err != nil {
			log.Warn("skipping archive", zap.String("path", zipPath), zap.Error(err))
		}
	}
	return mgr
}

func (a *app) cmdTextures(args []string) error {
	if len(args) != 1 {
		return usageError("textures <model>")
	}
	m, err := a.loadModel(args[0])
	if err != nil {
		return err
	}

	mgr := a.newAssetManager()
	defer func() {
		if err := mgr.Close(); err != nil {
			logger.Named("mmdtool").Warn("closing assets", zap.Error(err))
		}
	}()

	var statuses []assets.TextureStatus
	if zipPath, entry, ok := splitArchivePath(args[0]); ok {
		statuses, err = resolveInArchive(mgr, m, zipPath, entryDir(entry))
		if err != nil {
			return err
		}
	} else {
		statuses = mgr.Resolve(m, filepath.Dir(args[0]))
	}

	found := 0
	for _, s := range statuses {
		where, info := "MISSING", ""
		if s.Found() {
			where = s.Source
			found++
			info = s.Info.String()
			if s.Err != nil {
				info = "?"
				logger.Named("mmdtool").Debug("texture header", zap.Error(s.Err))
			}
		}
		fmt.Fprintf(a.stdout, "%-4d %-40s %-14s %s\n", s.Index, s.Path, info, where)
	}
	hits, misses := mgr.CacheStats()
	logger.Named("mmdtool").Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses))
	fmt.Fprintf(a.stdout, "\n(%d of %d textures resolved)\n", found, len(statuses))
	return nil
}

// resolveInArchive looks textures up next to the model inside its archive
// before falling back to the manager's sources.
func resolveInArchive(mgr *assets.Manager, m *model.Model, zipPath, dir string) ([]assets.TextureStatus, error) {
	ar, err := archive.Open(zipPath)
	if err != nil {
		return nil, err
	}
	defer ar.Close()

	statuses := mgr.Resolve(m, "")
	for i := range statuses {
		p := path.Join(dir, strings.ReplaceAll(statuses[i].Path, "\\", "/"))
		if data, err := ar.Read(p); err == nil {
			statuses[i].Source = zipPath
			statuses[i].Probe(data)
		}
	}
	return statuses, nil
}

func (a *app) cmdSample(args []string) error {
	flags := flag.NewFlagSet("sample", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	from := flags.Float64("from", 0, "First frame")
	to := flags.Float64("to", -1, "Last frame (default: end of clip)")
	step := flags.Float64("step", float64(a.cfg.Animation.SampleStep), "Frame step")
	eased := flags.Bool("eased", false, "Apply the stored bezier easing")
	if err := flags.Parse(args); err != nil {
		return usageError("sample [-from F] [-to F] [-step F] [-eased] <motion> <clip>")
	}
	if flags.NArg() != 2 || *step <= 0 {
		return usageError("sample [-from F] [-to F] [-step F] [-eased] <motion> <clip>")
	}

	data, err := readInput(flags.Arg(0))
	if err != nil {
		return err
	}

	motions := loader.NewRegistry[*animation.Animator[float32]](&loader.VMDLoader{
		Eased:               *eased,
		BezierMaxIterations: a.cfg.Animation.BezierMaxIterations,
	})
	anim, err := motions.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", flags.Arg(0), err)
	}

	clip := anim.Clip(flags.Arg(1))
	if clip == nil {
		return fmt.Errorf("clip %q not found in %s (%d clips)", flags.Arg(1), flags.Arg(0), anim.Len())
	}

	end := float32(*to)
	if end < 0 {
		end = clip.Duration()
	}

	var row []float32
	clip.AddEvent(func(_ string, value float32) {
		row = append(row, value)
	})

	fmt.Fprintf(a.stdout, "%8s %8s", "frame", "sec")
	for _, name := range clip.CurveNames() {
		fmt.Fprintf(a.stdout, " %11s", name)
	}
	fmt.Fprintln(a.stdout)

	fps := a.cfg.Animation.FrameRate
	for i := 0; ; i++ {
		t := float32(*from) + float32(i)*float32(*step)
		if t > end {
			break
		}
		row = row[:0]
		clip.Evaluate(t)

		fmt.Fprintf(a.stdout, "%8.2f %8.3f", t, t/fps)
		for _, v := range row {
			fmt.Fprintf(a.stdout, " %11.4f", v)
		}
		fmt.Fprintln(a.stdout)
	}
	return nil
}

func (a *app) cmdPose(args []string) error {
	flags := flag.NewFlagSet("pose", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	frame := flags.Float64("frame", 0, "Frame to evaluate")
	eased := flags.Bool("eased", false, "Apply the stored bezier easing")
	all := flags.Bool("a", false, "Include bones the motion does not drive")
	if err := flags.Parse(args); err != nil || flags.NArg() != 2 {
		return usageError("pose [-frame F] [-eased] [-a] <model> <motion>")
	}

	m, err := a.loadModel(flags.Arg(0))
	if err != nil {
		return err
	}
	skel, err := pose.NewSkeleton(m)
	if err != nil {
		return fmt.Errorf("%s: %w", flags.Arg(0), err)
	}

	data, err := readInput(flags.Arg(1))
	if err != nil {
		return err
	}
	motions := loader.NewRegistry[*animation.Animator[float32]](&loader.VMDLoader{
		Eased:               *eased,
		BezierMaxIterations: a.cfg.Animation.BezierMaxIterations,
	})
	anim, err := motions.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", flags.Arg(1), err)
	}

	p := skel.NewPose()
	driven := p.Sample(anim, float32(*frame))

	fmt.Fprintf(a.stdout, "%-4s %-20s %10s %10s %10s\n", "#", "bone", "x", "y", "z")
	for i, j := range skel.Joints {
		if !*all && anim.Clip(j.Name) == nil {
			continue
		}
		pos := p.Position(i)
		fmt.Fprintf(a.stdout, "%-4d %-20s %10.4f %10.4f %10.4f\n", i, j.Name, pos[0], pos[1], pos[2])
	}
	fmt.Fprintf(a.stdout, "\n(frame %.2f, %d of %d bones driven)\n", *frame, driven, len(skel.Joints))
	return nil
}

func (a *app) cmdDump(args []string) error {
	flags := flag.NewFlagSet("dump", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	depth := flags.Int("depth", 0, "Maximum nesting depth (0 = unlimited)")
	if err := flags.Parse(args); err != nil || flags.NArg() != 1 {
		return usageError("dump [-depth N] <file>")
	}

	data, err := readInput(flags.Arg(0))
	if err != nil {
		return err
	}

	var v any
	switch formats.Detect(data) {
	case formats.FormatPMX:
		v, err = loader.LoadModel(data)
	case formats.FormatVMD:
		v, err = formats.ParseVMD(data)
	default:
		err = loader.ErrUnsupportedFormat
	}
	if err != nil {
		return fmt.Errorf("%s: %w", flags.Arg(0), err)
	}

	cfg := spew.ConfigState{
		Indent:                  "  ",
		MaxDepth:                *depth,
		DisableCapacities:       true,
		DisablePointerAddresses: true,
		SortKeys:                true,
	}
	cfg.Fdump(a.stdout, v)
	return nil
}

// checkFile decodes one file and returns a one-line summary.
func checkFile(p string) (string, error) {
	data, err := readInput(p)
	if err != nil {
		return "", err
	}

	switch formats.Detect(data) {
	case formats.FormatPMX:
		m, err := loader.LoadModel(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("model, %d meshes, %d bones", len(m.Meshes), len(m.Bones)), nil
	case formats.FormatVMD:
		anim, err := loader.LoadMotion(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("motion, %d clips, %g frames", anim.Len(), anim.Duration()), nil
	default:
		return "", loader.ErrUnsupportedFormat
	}
}

// expandInputs replaces directories with the model and motion files below them.
func expandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isMMDFile(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (a *app) cmdCheck(args []string) error {
	if len(args) < 1 {
		return usageError("check <file|dir>...")
	}

	files, err := expandInputs(args)
	if err != nil {
		return err
	}

	log := logger.Named("mmdtool")
	var errs error
	for _, p := range files {
		summary, err := checkFile(p)
		if err != nil {
			log.Debug("check failed", zap.String("file", p), zap.Error(err))
			fmt.Fprintf(a.stdout, "FAIL  %s: %v\n", p, err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		fmt.Fprintf(a.stdout, "ok    %s (%s)\n", p, summary)
	}

	failed := len(multierr.Errors(errs))
	fmt.Fprintf(a.stdout, "\n(%d checked, %d failed)\n", len(files), failed)
	if errs != nil {
		return fmt.Errorf("%w: %d of %d", errFailed, failed, len(files))
	}
	return nil
}

func (a *app) cmdList(args []string) error {
	flags := flag.NewFlagSet("list", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	all := flags.Bool("a", false, "List every entry, not only models and motions")
	if err := flags.Parse(args); err != nil || flags.NArg() < 1 {
		return usageError("list [-a] <archive.zip> [pattern]")
	}

	ar, err := archive.Open(flags.Arg(0))
	if err != nil {
		return err
	}
	defer ar.Close()

	pattern := ""
	if flags.NArg() > 1 {
		pattern = strings.ToLower(flags.Arg(1))
	}

	count := 0
	for _, name := range ar.List() {
		if !*all && !isMMDFile(name) {
			continue
		}
		if pattern != "" {
			matched, _ := path.Match(pattern, path.Base(name))
			if !matched && !strings.Contains(name, pattern) {
				continue
			}
		}
		entry, err := ar.Stat(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%10d  %s\n", entry.Size, entry.Name)
		count++
	}

	fmt.Fprintf(a.stderr, "\n(%d files)\n", count)
	return nil
}
