// Preview, details and status panels for the model inspector.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/MrShreyas/car/internal/engine/model"
	"github.com/MrShreyas/car/internal/engine/texture"
)

// renderPreview draws the rendered model and forwards mouse input to the
// preview camera while the image is hovered.
func (app *App) renderPreview() {
	if app.preview.Model() == nil {
		imgui.TextDisabled("No model loaded")
		imgui.TextDisabled("Use File > Open Model... (Ctrl+O)")
		if app.loadErr != "" {
			imgui.TextColored(imgui.NewVec4(0.9, 0.4, 0.4, 1), app.loadErr)
		}
		return
	}

	textureID := app.preview.Render()
	w, h := app.preview.Size()
	viewerW, viewerH := float32(w), float32(h)

	avail := imgui.ContentRegionAvail()
	maxPreviewHeight := avail.Y - 40 // room for the controls row
	if maxPreviewHeight > viewerH {
		maxPreviewHeight = viewerH
	}

	aspectRatio := viewerW / viewerH
	displayW := maxPreviewHeight * aspectRatio
	displayH := maxPreviewHeight
	if displayW > avail.X {
		displayW = avail.X
		displayH = displayW / aspectRatio
	}

	startX := imgui.CursorPosX()
	if displayW < avail.X {
		imgui.SetCursorPosX(startX + (avail.X-displayW)/2)
	}

	// GL textures are bottom-up, so flip V.
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(textureID))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(displayW, displayH),
		imgui.NewVec2(0, 1),
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0.15, 0.15, 0.15, 1.0),
		imgui.NewVec4(1, 1, 1, 1),
	)

	if imgui.IsItemClicked() {
		// Map the click from the displayed image to render-target pixels.
		origin := imgui.ItemRectMin()
		mousePos := imgui.MousePos()
		x := (mousePos.X - origin.X) / displayW * viewerW
		y := (mousePos.Y - origin.Y) / displayH * viewerH
		if i := app.preview.Pick(x, y); i >= 0 {
			app.selectedMesh = i
		}
	}

	if imgui.IsItemHovered() {
		mousePos := imgui.MousePos()
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			app.preview.HandleMouseDrag(mousePos.X-app.lastMousePos.X, mousePos.Y-app.lastMousePos.Y)
		}
		app.lastMousePos = mousePos

		if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
			app.preview.HandleMouseWheel(wheel)
		}
	}

	if imgui.Button("Reset View") {
		app.preview.Reset()
	}
	imgui.SameLine()
	imgui.Checkbox("Bounds", &app.preview.ShowBounds)
	imgui.SameLine()
	if imgui.Button("Screenshot") {
		app.screenshotRequested = true
	}
	imgui.SameLine()
	imgui.TextDisabled("(Drag to rotate, scroll to zoom, click to select a mesh)")
}

// renderDetails draws the model, mesh, material and lighting sections.
func (app *App) renderDetails() {
	app.renderLighting()
	imgui.Separator()

	m := app.preview.Model()
	if m == nil {
		imgui.TextDisabled("No model loaded")
		return
	}

	b := m.Bounds()
	size := b.Size()
	imgui.Text(fmt.Sprintf("File: %s", filepath.Base(app.modelPath)))
	imgui.Text(fmt.Sprintf("Meshes: %d (%d transparent)", m.MeshCount(), m.TransparentCount()))
	imgui.Text(fmt.Sprintf("Size: %.2f x %.2f x %.2f", size.X, size.Y, size.Z))
	imgui.Text(fmt.Sprintf("Diagonal: %.2f", size.Length()))

	imgui.Separator()
	app.renderMeshTable(m)

	if app.selectedMesh >= 0 && app.selectedMesh < len(m.Meshes) {
		imgui.Separator()
		renderMaterial(m.Meshes[app.selectedMesh])
	}

	textures := m.Textures()
	if len(textures) > 0 {
		if imgui.TreeNodeExStrV(fmt.Sprintf("Textures (%d)", len(textures)), imgui.TreeNodeFlagsNone) {
			for i, t := range textures {
				imgui.Text(fmt.Sprintf("%d: %s", i, t))
			}
			imgui.TreePop()
		}
	}
}

// renderLighting draws the environment status and exposure control.
func (app *App) renderLighting() {
	ctx := app.preview.Renderer()
	env := ctx.Environment()

	switch {
	case env == nil || !env.Ready():
		imgui.TextColored(imgui.NewVec4(0.9, 0.4, 0.4, 1), "Environment: none")
	case env.Procedural:
		imgui.Text("Environment: procedural sky")
	default:
		imgui.Text(fmt.Sprintf("Environment: %s", filepath.Base(env.Source)))
	}
	if env != nil && env.Ready() {
		imgui.TextDisabled(fmt.Sprintf("Cube %d px, %d prefilter mips", env.EnvSize, env.Mips))
	}

	if imgui.Button("Load HDR...") {
		app.openFileDialog("Open HDR Environment", &app.pendingHDRPath, [2]string{"Radiance HDR", "hdr"})
	}
	imgui.SameLine()
	if imgui.Button("Procedural") {
		app.OpenEnvironment("")
	}

	if imgui.SliderFloatV("Exposure", &app.exposure, 0.1, 8.0, "%.2f", imgui.SliderFlagsNone) {
		ctx.SetExposure(app.exposure)
	}
}

// renderMeshTable lists every mesh with its vertex and triangle counts.
// Clicking a row selects it for the material section.
func (app *App) renderMeshTable(m *model.Model) {
	if !imgui.TreeNodeExStrV(fmt.Sprintf("Meshes (%d)", len(m.Meshes)), imgui.TreeNodeFlagsDefaultOpen) {
		return
	}
	defer imgui.TreePop()

	if !imgui.BeginTable("meshTable", 4) {
		return
	}
	imgui.TableNextRow()
	for _, h := range []string{"Mesh", "Verts", "Tris", "Material"} {
		imgui.TableNextColumn()
		imgui.TextDisabled(h)
	}
	for i, mesh := range m.Meshes {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		name := mesh.Name
		if name == "" {
			name = fmt.Sprintf("mesh %d", i)
		}
		label := fmt.Sprintf("%s##mesh%d", name, i)
		if imgui.SelectableBoolV(label, app.selectedMesh == i, 0, imgui.NewVec2(0, 0)) {
			app.selectedMesh = i
		}
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", len(mesh.Vertices)))
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", len(mesh.Indices)/3))
		imgui.TableNextColumn()
		if mesh.Material.Transparent {
			imgui.TextColored(imgui.NewVec4(0.5, 0.8, 1, 1), mesh.Material.Name)
		} else {
			imgui.Text(mesh.Material.Name)
		}
	}
	imgui.EndTable()
}

// renderMaterial shows the resolved factors and bound textures of a mesh.
func renderMaterial(mesh *model.Mesh) {
	mat := mesh.Material
	imgui.Text(fmt.Sprintf("Material: %s", mat.Name))
	c := mat.BaseColorFactor
	imgui.ColorButton("##baseColor", imgui.NewVec4(c[0], c[1], c[2], c[3]))
	imgui.SameLine()
	imgui.Text(fmt.Sprintf("Base colour (%.2f, %.2f, %.2f, %.2f)", c[0], c[1], c[2], c[3]))
	imgui.Text(fmt.Sprintf("Metallic %.2f  Roughness %.2f", mat.MetallicFactor, mat.RoughnessFactor))
	imgui.Text(fmt.Sprintf("Alpha mode: %s", mat.AlphaMode))
	if mat.Transparent {
		imgui.TextColored(imgui.NewVec4(0.5, 0.8, 1, 1), "Drawn in the transparent pass")
	}

	for r := texture.Role(0); r < texture.RoleCount; r++ {
		ref := mesh.Slot(r)
		if ref == nil {
			imgui.TextDisabled(fmt.Sprintf("%-18s -", r))
			continue
		}
		imgui.Text(fmt.Sprintf("%-18s %s", r, filepath.Base(ref.Path)))
		if imgui.IsItemHovered() {
			imgui.BeginTooltip()
			imgui.Text(ref.Path)
			imgui.Text(fmt.Sprintf("Colour space: %s", r.ColorSpace()))
			uv := ref.UV
			imgui.Text(fmt.Sprintf("UV offset (%.3f, %.3f) scale (%.3f, %.3f) rotation %.3f",
				uv.Offset[0], uv.Offset[1], uv.Scale[0], uv.Scale[1], uv.Rotation))
			imgui.EndTooltip()
		}
	}
}

// renderStatusBar shows the loaded model and lighting source.
func (app *App) renderStatusBar() {
	if app.modelPath == "" {
		imgui.TextDisabled("No model loaded")
		return
	}
	m := app.preview.Model()
	verts, tris := 0, 0
	for _, mesh := range m.Meshes {
		verts += len(mesh.Vertices)
		tris += len(mesh.Indices) / 3
	}
	imgui.Text(fmt.Sprintf("%s | %d meshes | %d verts | %d tris | exposure %.2f",
		app.modelPath, m.MeshCount(), verts, tris, app.exposure))
}
